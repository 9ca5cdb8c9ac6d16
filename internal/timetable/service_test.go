package timetable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuserp/internal/apperr"
)

// fakeStore is an in-memory Store; Serialized just runs fn against the fake.
// HasConflict mirrors the SQL: an existing entry occupies its stored slot
// plus, for duration 2, the next same-day session.
type fakeStore struct {
	courses  map[int]string   // course id -> type
	slots    map[int]Timeslot // timeslot id -> row
	entries  map[int]Entry    // the live timetable
	conflict func(sectionID, facultyID int, slotIDs []int, ignoreID int) bool // optional override

	inserted []Entry
	updated  []Entry
	deleted  []int
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses: map[int]string{
			10: "Lecture",
			20: "Lab",
		},
		slots: map[int]Timeslot{
			1: {ID: 1, Day: "Mon", Session: 1},
			2: {ID: 2, Day: "Mon", Session: 2},
			3: {ID: 3, Day: "Mon", Session: 3},
			// session 4 is Monday's last; no session 5 exists
			4: {ID: 4, Day: "Mon", Session: 4},
			5: {ID: 5, Day: "Tue", Session: 1},
		},
		entries: map[int]Entry{},
		nextID:  100,
	}
}

// occupied expands an entry into its occupied slot set.
func (f *fakeStore) occupied(e Entry) []int {
	ids := []int{e.TimeslotID}
	if e.DurationPeriods == 2 {
		p := f.slots[e.TimeslotID]
		for _, ts := range f.slots {
			if ts.Day == p.Day && ts.Session == p.Session+1 {
				ids = append(ids, ts.ID)
			}
		}
	}
	return ids
}

func (f *fakeStore) Serialized(ctx context.Context, fn func(Store) error) error {
	return fn(f)
}

func (f *fakeStore) CourseType(_ context.Context, courseID int) (string, bool, error) {
	t, ok := f.courses[courseID]
	return t, ok, nil
}

func (f *fakeStore) Timeslot(_ context.Context, id int) (Timeslot, bool, error) {
	ts, ok := f.slots[id]
	return ts, ok, nil
}

func (f *fakeStore) TimeslotAt(_ context.Context, day string, session int) (Timeslot, bool, error) {
	for _, ts := range f.slots {
		if ts.Day == day && ts.Session == session {
			return ts, true, nil
		}
	}
	return Timeslot{}, false, nil
}

func (f *fakeStore) HasConflict(_ context.Context, sectionID, facultyID int, slotIDs []int, ignoreID int) (bool, error) {
	if f.conflict != nil {
		return f.conflict(sectionID, facultyID, slotIDs, ignoreID), nil
	}
	want := make(map[int]bool, len(slotIDs))
	for _, id := range slotIDs {
		want[id] = true
	}
	for _, e := range f.entries {
		if e.ID == ignoreID {
			continue
		}
		if e.SectionID != sectionID && e.FacultyID != facultyID {
			continue
		}
		for _, id := range f.occupied(e) {
			if want[id] {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeStore) InsertEntry(_ context.Context, e Entry) (int, error) {
	f.nextID++
	e.ID = f.nextID
	f.inserted = append(f.inserted, e)
	f.entries[e.ID] = e
	return e.ID, nil
}

func (f *fakeStore) UpdateEntry(_ context.Context, e Entry) (int64, error) {
	if _, ok := f.entries[e.ID]; !ok {
		return 0, nil
	}
	f.updated = append(f.updated, e)
	f.entries[e.ID] = e
	return 1, nil
}

func (f *fakeStore) EntrySection(_ context.Context, entryID int) (int, bool, error) {
	e, ok := f.entries[entryID]
	return e.SectionID, ok, nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, id int) (int64, error) {
	if _, ok := f.entries[id]; !ok {
		return 0, nil
	}
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return 1, nil
}

func TestScheduleLecture(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	id, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 10, FacultyID: 7, TimeslotID: 1, Room: "A101",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, 1, st.inserted[0].DurationPeriods)
	assert.Equal(t, "A101", st.inserted[0].Room)
}

func TestScheduleLabOccupiesTwoSessions(t *testing.T) {
	st := newFakeStore()
	var checkedSlots []int
	st.conflict = func(_, _ int, slotIDs []int, _ int) bool {
		checkedSlots = slotIDs
		return false
	}
	svc := NewService(st)

	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 20, FacultyID: 7, TimeslotID: 2,
	})
	require.NoError(t, err)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, 2, st.inserted[0].DurationPeriods)
	// Conflict check must cover the primary slot and the next same-day session.
	assert.ElementsMatch(t, []int{2, 3}, checkedSlots)
}

func TestScheduleLabWithoutConsecutiveSlot(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	// Slot 4 is Monday's last session; a lab there cannot pair.
	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 20, FacultyID: 7, TimeslotID: 4,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.IncompleteSchedulingWindow, apperr.KindOf(err))
	assert.Empty(t, st.inserted)
}

func TestScheduleLabDoesNotPairAcrossDays(t *testing.T) {
	st := newFakeStore()
	// Tue session 1 exists but Mon session 5 does not; pairing must look at
	// the same day only, so a lab at Mon/4 fails even though other slots exist.
	delete(st.slots, 5)
	st.slots[5] = Timeslot{ID: 5, Day: "Tue", Session: 5}
	svc := NewService(st)

	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 20, FacultyID: 7, TimeslotID: 4,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.IncompleteSchedulingWindow, apperr.KindOf(err))
}

func TestScheduleConflictRejected(t *testing.T) {
	st := newFakeStore()
	st.conflict = func(_, _ int, _ []int, _ int) bool { return true }
	svc := NewService(st)

	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 10, FacultyID: 7, TimeslotID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.SchedulingConflict, apperr.KindOf(err))
	assert.Empty(t, st.inserted)
}

func TestScheduleLabSecondSlotBlocksLaterBooking(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	// Lab at Mon/session 2 occupies sessions 2 and 3.
	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 20, FacultyID: 7, TimeslotID: 2,
	})
	require.NoError(t, err)

	// Same faculty in the lab's second session, different section.
	_, err = svc.Schedule(context.Background(), Input{
		SectionID: 2, CourseID: 10, FacultyID: 7, TimeslotID: 3,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.SchedulingConflict, apperr.KindOf(err))

	// Same section in the lab's second session, different faculty.
	_, err = svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 10, FacultyID: 8, TimeslotID: 3,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.SchedulingConflict, apperr.KindOf(err))

	// Unrelated section and faculty book the same session freely.
	_, err = svc.Schedule(context.Background(), Input{
		SectionID: 2, CourseID: 10, FacultyID: 8, TimeslotID: 3,
	})
	assert.NoError(t, err)
}

func TestScheduleNewLabSecondSlotCollides(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	// Lecture at Mon/session 3.
	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 2, CourseID: 10, FacultyID: 8, TimeslotID: 3,
	})
	require.NoError(t, err)

	// A lab at Mon/session 2 would occupy sessions 2 and 3; the second
	// session collides with the lecture.
	_, err = svc.Schedule(context.Background(), Input{
		SectionID: 2, CourseID: 20, FacultyID: 9, TimeslotID: 2,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.SchedulingConflict, apperr.KindOf(err))
}

func TestScheduleInvalidReferences(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	_, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 999, FacultyID: 7, TimeslotID: 1,
	})
	assert.Equal(t, apperr.InvalidReference, apperr.KindOf(err))

	_, err = svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 10, FacultyID: 7, TimeslotID: 999,
	})
	assert.Equal(t, apperr.InvalidReference, apperr.KindOf(err))
}

func TestScheduleMissingFields(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Schedule(context.Background(), Input{CourseID: 10, FacultyID: 7, TimeslotID: 1})
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestRescheduleIgnoresOwnEntry(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	id, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 10, FacultyID: 7, TimeslotID: 1,
	})
	require.NoError(t, err)

	var gotIgnore int
	st.conflict = func(_, _ int, _ []int, ignoreID int) bool {
		gotIgnore = ignoreID
		return false
	}

	err = svc.Reschedule(context.Background(), id, Input{
		CourseID: 10, FacultyID: 7, TimeslotID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, id, gotIgnore)
	require.Len(t, st.updated, 1)
	// The section comes from the stored row, not the request.
	assert.Equal(t, 1, st.updated[0].SectionID)
}

func TestRescheduleNotFound(t *testing.T) {
	svc := NewService(newFakeStore())

	err := svc.Reschedule(context.Background(), 404, Input{
		CourseID: 10, FacultyID: 7, TimeslotID: 1,
	})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestDeleteEntry(t *testing.T) {
	st := newFakeStore()
	svc := NewService(st)

	id, err := svc.Schedule(context.Background(), Input{
		SectionID: 1, CourseID: 10, FacultyID: 7, TimeslotID: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(svc.Delete(context.Background(), id)))
}
