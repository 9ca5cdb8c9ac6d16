// Package attendance implements the attendance state engine: provisional QR
// rows, manual finalization with forced override, the status projection, and
// duplicate-face ("proxy") detection.
//
// Per (faculty, session, course, date) group the states are Empty ->
// Provisional (QR rows only) -> Final (manual submit). Finalization is
// one-way; a further manual submit is rejected unless force is set, which
// overwrites in place.
package attendance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"campuserp/internal/apperr"
	"campuserp/internal/store"
)

// QR codes are valid for a single scanning session; an exactly-10s-old
// timestamp still passes.
const qrValidity = 10 * time.Second

// Modes and statuses as stored.
const (
	ModeQR     = "qr"
	ModeManual = "manual"
	ModeFinal  = "final"

	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Record is one student's mark inside a submission.
type Record struct {
	StudentID    int    `json:"student_id"`
	Status       string `json:"status"`
	ScannedPhoto string `json:"scanned_photo,omitempty"`
}

// Submission is a bulk attendance write for one class group.
type Submission struct {
	FacultyID   int
	SessionID   int
	CourseID    int
	Date        string
	Mode        string
	Records     []Record
	QRTimestamp int64 // unix millis from the scanned QR payload
	Force       bool
}

// Result reports a successful submission.
type Result struct {
	Message string
	SavedAt time.Time
}

// Status is the read-only group projection clients use to decide between the
// mark and modify flows. Exists means final rows exist, not provisional ones.
type Status struct {
	Exists     bool    `json:"exists"`
	Count      int     `json:"count"`
	FinalCount int     `json:"final_count"`
	LastMode   *string `json:"last_mode"`
	LastTime   *string `json:"last_time"`
}

// ProxyMatch identifies the student already holding a face fingerprint.
type ProxyMatch struct {
	ID             int
	Name           string
	RegistrationNo string
}

// Store is the relational access the engine needs. Serialized runs fn inside
// one serializable transaction covering the finality check and the upserts.
type Store interface {
	Serialized(ctx context.Context, fn func(Store) error) error
	OwnsSession(ctx context.Context, facultyID, sessionID, courseID int) (bool, error)
	FinalCount(ctx context.Context, facultyID, sessionID, courseID int, date string) (int, error)
	StoredPhotos(ctx context.Context, studentIDs []int) (map[int]string, error)
	UpsertRecord(ctx context.Context, facultyID, sessionID, courseID int, date string, rec Record, mode string) error
	MarkFinalized(ctx context.Context, facultyID, sessionID, courseID int, date string) error
	GroupStatus(ctx context.Context, facultyID, sessionID, courseID int, date string) (Status, error)
	StudentWithFaceHash(ctx context.Context, hash string, excludeStudentID int) (*ProxyMatch, error)
	SetFaceHash(ctx context.Context, studentID int, hash string) error
}

var submissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "campuserp_attendance_submissions_total",
		Help: "Accepted attendance submissions by mode.",
	},
	[]string{"mode"},
)

// Service coordinates attendance writes and proxy checks.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Submit validates and persists a bulk attendance write.
//
// QR submissions create provisional rows; manual submissions finalize the
// group. A finalized group rejects further manual writes unless force is set.
// Upserts key on (session, course, student, date), so re-submitting identical
// data only refreshes timestamps.
func (s *Service) Submit(ctx context.Context, in Submission) (Result, error) {
	if in.Mode == "" {
		in.Mode = ModeManual
	}
	if in.FacultyID == 0 || in.SessionID == 0 || in.CourseID == 0 || in.Date == "" || len(in.Records) == 0 {
		return Result{}, apperr.New(apperr.InvalidInput, "Missing fields or records")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return Result{}, apperr.New(apperr.InvalidInput, "Invalid date")
	}
	for _, rec := range in.Records {
		if rec.StudentID == 0 {
			return Result{}, apperr.New(apperr.InvalidInput, "No student ids provided")
		}
		if rec.Status != StatusPresent && rec.Status != StatusAbsent {
			return Result{}, apperr.New(apperr.InvalidInput, "Invalid status")
		}
	}

	if in.Mode == ModeQR {
		if in.QRTimestamp == 0 {
			return Result{}, apperr.New(apperr.InvalidInput, "Missing QR timestamp")
		}
		if s.now().UnixMilli()-in.QRTimestamp > qrValidity.Milliseconds() {
			return Result{}, apperr.New(apperr.ExpiredToken, "QR Code expired")
		}
	}

	err := s.store.Serialized(ctx, func(st Store) error {
		owns, err := st.OwnsSession(ctx, in.FacultyID, in.SessionID, in.CourseID)
		if err != nil {
			return apperr.Store(err)
		}
		if !owns {
			return apperr.New(apperr.InvalidReference, "Invalid session for this faculty/course")
		}

		finalCount, err := st.FinalCount(ctx, in.FacultyID, in.SessionID, in.CourseID, in.Date)
		if err != nil {
			return apperr.Store(err)
		}
		if finalCount > 0 && !in.Force {
			return apperr.New(apperr.AlreadyFinalized,
				"Attendance already exists for this session. Use Modify Attendance to change.")
		}

		ids := make([]int, 0, len(in.Records))
		for _, rec := range in.Records {
			ids = append(ids, rec.StudentID)
		}
		photos, err := st.StoredPhotos(ctx, ids)
		if err != nil {
			return apperr.Store(err)
		}

		for _, rec := range in.Records {
			if rec.ScannedPhoto == "" {
				rec.ScannedPhoto = photos[rec.StudentID]
			}
			if err := st.UpsertRecord(ctx, in.FacultyID, in.SessionID, in.CourseID, in.Date, rec, in.Mode); err != nil {
				return apperr.Store(err)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	message := "Attendance saved (provisional)"
	if in.Mode == ModeManual {
		message = "Attendance saved"
		// Best-effort side effect: the rows are already committed, so a
		// failure here is logged rather than surfaced.
		if err := s.store.MarkFinalized(ctx, in.FacultyID, in.SessionID, in.CourseID, in.Date); err != nil {
			log.Printf("attendance: finalize flag update failed: %v", err)
		}
	}

	submissionsTotal.WithLabelValues(in.Mode).Inc()
	return Result{Message: message, SavedAt: s.now().UTC()}, nil
}

// Status returns the group projection for (faculty, session, course, date).
func (s *Service) Status(ctx context.Context, facultyID, sessionID, courseID int, date string) (Status, error) {
	if facultyID == 0 || sessionID == 0 || courseID == 0 || date == "" {
		return Status{}, apperr.New(apperr.InvalidInput, "Missing fields")
	}
	st, err := s.store.GroupStatus(ctx, facultyID, sessionID, courseID, date)
	if err != nil {
		return Status{}, apperr.Store(err)
	}
	return st, nil
}

// DetectProxy fingerprints a scanned photo and rejects it when another
// student already carries the same fingerprint. This is exact-equality
// duplicate detection, not biometric matching.
func (s *Service) DetectProxy(ctx context.Context, studentID int, scannedPhoto string) error {
	if studentID == 0 || scannedPhoto == "" {
		return apperr.New(apperr.InvalidInput, "Missing student_id or scanned_photo")
	}

	sum := sha256.Sum256([]byte(scannedPhoto))
	hash := hex.EncodeToString(sum[:])

	match, err := s.store.StudentWithFaceHash(ctx, hash, studentID)
	if err != nil {
		return apperr.Store(err)
	}
	if match != nil {
		return apperr.New(apperr.IdentityConflict,
			fmt.Sprintf("Proxy detected! Face already belongs to %s (%s)", match.Name, match.RegistrationNo))
	}

	if err := s.store.SetFaceHash(ctx, studentID, hash); err != nil {
		// The unique key on face_hash closes the check-then-write window.
		if store.IsUniqueViolation(err) {
			return apperr.New(apperr.IdentityConflict, "Proxy detected! Face already belongs to another student")
		}
		return apperr.Store(err)
	}
	return nil
}
