package timetable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository persists timetable data in Postgres.
type Repository struct {
	db *sql.DB
	q  querier
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// Serialized runs fn against a transaction-bound view of the repository with
// serializable isolation. Conflicting concurrent schedules abort instead of
// both committing.
func (r *Repository) Serialized(ctx context.Context, fn func(Store) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(&Repository{db: r.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CourseType returns the course's type ("Lecture" or "Lab").
func (r *Repository) CourseType(ctx context.Context, courseID int) (string, bool, error) {
	var t string
	err := r.q.QueryRowContext(ctx, `SELECT type FROM course WHERE id = $1`, courseID).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return t, true, nil
}

// Timeslot returns a timeslot by id.
func (r *Repository) Timeslot(ctx context.Context, id int) (Timeslot, bool, error) {
	return r.scanTimeslot(r.q.QueryRowContext(ctx, `
		SELECT id, day, session, start_time, end_time FROM timeslot WHERE id = $1
	`, id))
}

// TimeslotAt returns the timeslot at (day, session), if any.
func (r *Repository) TimeslotAt(ctx context.Context, day string, session int) (Timeslot, bool, error) {
	return r.scanTimeslot(r.q.QueryRowContext(ctx, `
		SELECT id, day, session, start_time, end_time FROM timeslot WHERE day = $1 AND session = $2
	`, day, session))
}

func (r *Repository) scanTimeslot(row *sql.Row) (Timeslot, bool, error) {
	var ts Timeslot
	err := row.Scan(&ts.ID, &ts.Day, &ts.Session, &ts.StartTime, &ts.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return Timeslot{}, false, nil
	}
	if err != nil {
		return Timeslot{}, false, err
	}
	return ts, true, nil
}

// HasConflict reports whether any existing entry (other than ignoreEntryID)
// books the section or the faculty in one of the given slots. An existing
// entry occupies its stored slot plus, for labs (duration_periods = 2), the
// next same-day session, so both are matched against the new set.
func (r *Repository) HasConflict(ctx context.Context, sectionID, facultyID int, slotIDs []int, ignoreEntryID int) (bool, error) {
	if len(slotIDs) == 0 {
		return false, nil
	}

	args := []any{sectionID, facultyID}
	ph := make([]string, 0, len(slotIDs))
	for _, id := range slotIDs {
		args = append(args, id)
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
	}
	in := strings.Join(ph, ",")

	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM timetable tt
		JOIN timeslot p ON tt.timeslot_id = p.id
		LEFT JOIN timeslot n ON tt.duration_periods = 2
		      AND n.day = p.day AND n.session = p.session + 1
		WHERE (tt.section_id = $1 OR tt.faculty_id = $2)
		  AND (p.id IN (%s) OR n.id IN (%s))
	`, in, in)
	if ignoreEntryID != 0 {
		args = append(args, ignoreEntryID)
		query += fmt.Sprintf(" AND tt.id <> $%d", len(args))
	}

	var count int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertEntry writes a new entry and returns its id.
func (r *Repository) InsertEntry(ctx context.Context, e Entry) (int, error) {
	var id int
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO timetable (section_id, course_id, faculty_id, timeslot_id, room, duration_periods)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id
	`, e.SectionID, e.CourseID, e.FacultyID, e.TimeslotID, e.Room, e.DurationPeriods).Scan(&id)
	return id, err
}

// UpdateEntry rewrites an entry in place.
func (r *Repository) UpdateEntry(ctx context.Context, e Entry) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE timetable
		SET course_id = $1, faculty_id = $2, timeslot_id = $3, room = NULLIF($4, ''), duration_periods = $5
		WHERE id = $6
	`, e.CourseID, e.FacultyID, e.TimeslotID, e.Room, e.DurationPeriods, e.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EntrySection returns the section an entry belongs to.
func (r *Repository) EntrySection(ctx context.Context, entryID int) (int, bool, error) {
	var sectionID int
	err := r.q.QueryRowContext(ctx, `SELECT section_id FROM timetable WHERE id = $1`, entryID).Scan(&sectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return sectionID, true, nil
}

// DeleteEntry removes an entry by id.
func (r *Repository) DeleteEntry(ctx context.Context, id int) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM timetable WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
