package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuserp/internal/apperr"
)

type savedRecord struct {
	Record
	mode string
	date string
}

// fakeStore is an in-memory Store; Serialized just runs fn against the fake.
type fakeStore struct {
	ownsSession bool
	finalCount  int
	photos      map[int]string
	faceHashes  map[string]ProxyMatch // hash -> owner
	setHashErr  error

	saved     map[int]savedRecord // student id -> last write
	finalized int
	setHashes map[int]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ownsSession: true,
		photos:      map[int]string{},
		faceHashes:  map[string]ProxyMatch{},
		saved:       map[int]savedRecord{},
		setHashes:   map[int]string{},
	}
}

func (f *fakeStore) Serialized(ctx context.Context, fn func(Store) error) error {
	return fn(f)
}

func (f *fakeStore) OwnsSession(context.Context, int, int, int) (bool, error) {
	return f.ownsSession, nil
}

func (f *fakeStore) FinalCount(context.Context, int, int, int, string) (int, error) {
	return f.finalCount, nil
}

func (f *fakeStore) StoredPhotos(_ context.Context, ids []int) (map[int]string, error) {
	out := map[int]string{}
	for _, id := range ids {
		if p, ok := f.photos[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertRecord(_ context.Context, _, _, _ int, date string, rec Record, mode string) error {
	f.saved[rec.StudentID] = savedRecord{Record: rec, mode: mode, date: date}
	return nil
}

func (f *fakeStore) MarkFinalized(context.Context, int, int, int, string) error {
	f.finalized++
	return nil
}

func (f *fakeStore) GroupStatus(context.Context, int, int, int, string) (Status, error) {
	return Status{Exists: f.finalCount > 0, Count: len(f.saved), FinalCount: f.finalCount}, nil
}

func (f *fakeStore) StudentWithFaceHash(_ context.Context, hash string, excludeStudentID int) (*ProxyMatch, error) {
	if m, ok := f.faceHashes[hash]; ok && m.ID != excludeStudentID {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeStore) SetFaceHash(_ context.Context, studentID int, hash string) error {
	if f.setHashErr != nil {
		return f.setHashErr
	}
	f.setHashes[studentID] = hash
	return nil
}

func atMillis(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func validSubmission() Submission {
	return Submission{
		FacultyID: 1, SessionID: 2, CourseID: 3, Date: "2026-08-28",
		Records: []Record{
			{StudentID: 11, Status: StatusPresent},
			{StudentID: 12, Status: StatusAbsent},
		},
	}
}

func TestSubmitManualFinalizes(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	res, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "Attendance saved", res.Message)
	assert.Equal(t, 1, st.finalized)
	require.Len(t, st.saved, 2)
	assert.Equal(t, ModeManual, st.saved[11].mode)
}

func TestSubmitQRIsProvisional(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)
	svc.now = atMillis(50_000)

	in := validSubmission()
	in.Mode = ModeQR
	in.QRTimestamp = 45_000

	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Attendance saved (provisional)", res.Message)
	assert.Zero(t, st.finalized)
	assert.Equal(t, ModeQR, st.saved[11].mode)
}

func TestSubmitQRExpiryBoundary(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)
	svc.now = atMillis(60_000)

	in := validSubmission()
	in.Mode = ModeQR

	// Exactly 10s old still passes.
	in.QRTimestamp = 50_000
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	// One millisecond past the window is rejected.
	in.QRTimestamp = 49_999
	_, err = svc.Submit(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, apperr.ExpiredToken, apperr.KindOf(err))
}

func TestSubmitQRMissingTimestamp(t *testing.T) {
	svc := NewService(newFakeStore())

	in := validSubmission()
	in.Mode = ModeQR
	_, err := svc.Submit(context.Background(), in)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestSubmitRejectsForeignSession(t *testing.T) {
	st := newFakeStore()
	st.ownsSession = false
	svc := NewService(st)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidReference, apperr.KindOf(err))
	assert.Empty(t, st.saved)
}

func TestSubmitFinalizedGroupRejectsWithoutForce(t *testing.T) {
	st := newFakeStore()
	st.finalCount = 2
	svc := NewService(st)

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Equal(t, apperr.AlreadyFinalized, apperr.KindOf(err))
	assert.Empty(t, st.saved)
}

func TestSubmitForceOverwritesFinalizedGroup(t *testing.T) {
	st := newFakeStore()
	st.finalCount = 2
	svc := NewService(st)

	in := validSubmission()
	in.Force = true
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, st.saved, 2)
}

func TestSubmitFillsMissingPhotosFromStore(t *testing.T) {
	st := newFakeStore()
	st.photos[11] = "https://cdn/stored.jpg"
	svc := NewService(st)

	in := validSubmission()
	in.Records[1].ScannedPhoto = "https://cdn/fresh.jpg"
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/stored.jpg", st.saved[11].ScannedPhoto)
	assert.Equal(t, "https://cdn/fresh.jpg", st.saved[12].ScannedPhoto)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(newFakeStore())

	in := validSubmission()
	in.Date = "28-08-2026"
	_, err := svc.Submit(context.Background(), in)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	in = validSubmission()
	in.Records[0].Status = "Late"
	_, err = svc.Submit(context.Background(), in)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	in = validSubmission()
	in.Records = nil
	_, err = svc.Submit(context.Background(), in)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestSubmitIdempotentResubmit(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	in := validSubmission()
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	// A forced re-submit of the same records lands on the same keys.
	in.Force = true
	st.finalCount = 2
	_, err = svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, st.saved, 2)
}

func TestDetectProxyConflict(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	// Student 11 registers a face first.
	require.NoError(t, svc.DetectProxy(context.Background(), 11, "photo-bytes"))
	hash := st.setHashes[11]
	require.NotEmpty(t, hash)
	st.faceHashes[hash] = ProxyMatch{ID: 11, Name: "Asha Rao", RegistrationNo: "R2201"}

	// A different student presenting the same photo is rejected without mutation.
	err := svc.DetectProxy(context.Background(), 12, "photo-bytes")
	require.Error(t, err)
	assert.Equal(t, apperr.IdentityConflict, apperr.KindOf(err))
	assert.Contains(t, apperr.MessageOf(err), "Asha Rao")
	_, mutated := st.setHashes[12]
	assert.False(t, mutated)
}

func TestDetectProxySameStudentRescan(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	require.NoError(t, svc.DetectProxy(context.Background(), 11, "photo-bytes"))
	hash := st.setHashes[11]
	st.faceHashes[hash] = ProxyMatch{ID: 11, Name: "Asha Rao", RegistrationNo: "R2201"}

	// The owner rescanning their own face is not a proxy.
	assert.NoError(t, svc.DetectProxy(context.Background(), 11, "photo-bytes"))
}

func TestDetectProxyMissingInput(t *testing.T) {
	svc := NewService(newFakeStore())

	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(svc.DetectProxy(context.Background(), 0, "x")))
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(svc.DetectProxy(context.Background(), 11, "")))
}

func TestStatusValidation(t *testing.T) {
	st := newFakeStore()
	st.finalCount = 1
	svc := NewService(st)

	status, err := svc.Status(context.Background(), 1, 2, 3, "2026-08-28")
	require.NoError(t, err)
	assert.True(t, status.Exists)

	_, err = svc.Status(context.Background(), 1, 0, 3, "2026-08-28")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}
