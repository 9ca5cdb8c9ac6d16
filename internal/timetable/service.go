// Package timetable implements the conflict-checked scheduler for timetable
// entries, including the lab pairing rule (a Lab course occupies two
// consecutive same-day sessions).
package timetable

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"campuserp/internal/apperr"
)

// Timeslot is immutable reference data; consecutive sessions on the same day
// are defined by session+1 existing for that day.
type Timeslot struct {
	ID        int    `json:"id"`
	Day       string `json:"day"`
	Session   int    `json:"session"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Entry is a persisted timetable row. DurationPeriods is 1 for lectures and
// 2 for labs; a lab's occupied slots are its timeslot plus the next session.
type Entry struct {
	ID              int    `json:"id"`
	SectionID       int    `json:"section_id"`
	CourseID        int    `json:"course_id"`
	FacultyID       int    `json:"faculty_id"`
	TimeslotID      int    `json:"timeslot_id"`
	Room            string `json:"room,omitempty"`
	DurationPeriods int    `json:"duration_periods"`
}

// Input is a schedule/reschedule request.
type Input struct {
	SectionID  int
	CourseID   int
	FacultyID  int
	TimeslotID int
	Room       string
}

// Store is the relational access the scheduler needs. Serialized runs fn
// against a store view inside a single serializable transaction so the
// check-then-write sequence cannot interleave with a concurrent booking.
type Store interface {
	Serialized(ctx context.Context, fn func(Store) error) error
	CourseType(ctx context.Context, courseID int) (string, bool, error)
	Timeslot(ctx context.Context, id int) (Timeslot, bool, error)
	TimeslotAt(ctx context.Context, day string, session int) (Timeslot, bool, error)
	HasConflict(ctx context.Context, sectionID, facultyID int, slotIDs []int, ignoreEntryID int) (bool, error)
	InsertEntry(ctx context.Context, e Entry) (int, error)
	UpdateEntry(ctx context.Context, e Entry) (int64, error)
	EntrySection(ctx context.Context, entryID int) (int, bool, error)
	DeleteEntry(ctx context.Context, id int) (int64, error)
}

var conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "campuserp_scheduling_conflicts_total",
	Help: "Timetable create/update attempts rejected for double-booking.",
})

// Service schedules timetable entries.
type Service struct {
	store Store
}

// NewService creates a scheduler backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Schedule creates a new conflict-checked entry and returns its id.
func (s *Service) Schedule(ctx context.Context, in Input) (int, error) {
	if in.SectionID == 0 || in.CourseID == 0 || in.FacultyID == 0 || in.TimeslotID == 0 {
		return 0, apperr.New(apperr.InvalidInput, "Missing fields")
	}

	var id int
	err := s.store.Serialized(ctx, func(st Store) error {
		duration, slots, err := s.plan(ctx, st, in)
		if err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, st, in, slots, 0); err != nil {
			return err
		}
		id, err = st.InsertEntry(ctx, Entry{
			SectionID:       in.SectionID,
			CourseID:        in.CourseID,
			FacultyID:       in.FacultyID,
			TimeslotID:      in.TimeslotID,
			Room:            in.Room,
			DurationPeriods: duration,
		})
		if err != nil {
			return apperr.Store(err)
		}
		return nil
	})
	return id, err
}

// Reschedule updates an existing entry. The entry's section is taken from the
// stored row; the conflict check ignores the entry's own id so an unchanged
// slot does not conflict with itself.
func (s *Service) Reschedule(ctx context.Context, id int, in Input) error {
	if in.CourseID == 0 || in.FacultyID == 0 || in.TimeslotID == 0 {
		return apperr.New(apperr.InvalidInput, "Missing fields")
	}

	return s.store.Serialized(ctx, func(st Store) error {
		sectionID, found, err := st.EntrySection(ctx, id)
		if err != nil {
			return apperr.Store(err)
		}
		if !found {
			return apperr.New(apperr.NotFound, "Entry not found")
		}
		in.SectionID = sectionID

		duration, slots, err := s.plan(ctx, st, in)
		if err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, st, in, slots, id); err != nil {
			return err
		}
		affected, err := st.UpdateEntry(ctx, Entry{
			ID:              id,
			SectionID:       sectionID,
			CourseID:        in.CourseID,
			FacultyID:       in.FacultyID,
			TimeslotID:      in.TimeslotID,
			Room:            in.Room,
			DurationPeriods: duration,
		})
		if err != nil {
			return apperr.Store(err)
		}
		if affected == 0 {
			return apperr.New(apperr.NotFound, "Entry not found")
		}
		return nil
	})
}

// Delete removes an entry unconditionally; removing an entry cannot create
// new conflicts, so no re-validation happens.
func (s *Service) Delete(ctx context.Context, id int) error {
	affected, err := s.store.DeleteEntry(ctx, id)
	if err != nil {
		return apperr.Store(err)
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, "Entry not found")
	}
	return nil
}

// plan resolves the course type and the occupied slot set: {primary} for
// lectures, {primary, next same-day session} for labs.
func (s *Service) plan(ctx context.Context, st Store, in Input) (int, []int, error) {
	courseType, found, err := st.CourseType(ctx, in.CourseID)
	if err != nil {
		return 0, nil, apperr.Store(err)
	}
	if !found {
		return 0, nil, apperr.New(apperr.InvalidReference, "Invalid course")
	}

	primary, found, err := st.Timeslot(ctx, in.TimeslotID)
	if err != nil {
		return 0, nil, apperr.Store(err)
	}
	if !found {
		return 0, nil, apperr.New(apperr.InvalidReference, "Invalid timeslot")
	}

	slots := []int{primary.ID}
	duration := 1
	if courseType == "Lab" {
		next, found, err := st.TimeslotAt(ctx, primary.Day, primary.Session+1)
		if err != nil {
			return 0, nil, apperr.Store(err)
		}
		if !found {
			return 0, nil, apperr.New(apperr.IncompleteSchedulingWindow,
				"Lab requires two consecutive sessions on the same day")
		}
		slots = append(slots, next.ID)
		duration = 2
	}
	return duration, slots, nil
}

func (s *Service) checkConflicts(ctx context.Context, st Store, in Input, slots []int, ignoreID int) error {
	conflict, err := st.HasConflict(ctx, in.SectionID, in.FacultyID, slots, ignoreID)
	if err != nil {
		return apperr.Store(err)
	}
	if conflict {
		conflictsTotal.Inc()
		return apperr.New(apperr.SchedulingConflict, "Timeslot conflict (section/faculty booked)")
	}
	return nil
}
