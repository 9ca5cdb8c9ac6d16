package attendance

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

// Repository persists attendance data in Postgres.
type Repository struct {
	db *sql.DB
	q  querier
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// Serialized runs fn against a transaction-bound view of the repository with
// serializable isolation.
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

// OwnsSession reports whether a timetable row binds the faculty to this
// timeslot and course.
func (r *Repository) OwnsSession(ctx context.Context, facultyID, sessionID, courseID int) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, `
		SELECT 1 FROM timetable WHERE faculty_id = $1 AND timeslot_id = $2 AND course_id = $3 LIMIT 1
	`, facultyID, sessionID, courseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FinalCount counts rows in the group that are final: finalized is set or the
// mode itself is authoritative.
func (r *Repository) FinalCount(ctx context.Context, facultyID, sessionID, courseID int, date string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance
		WHERE faculty_id = $1 AND session_id = $2 AND course_id = $3 AND date = $4
		  AND (finalized OR mode IN ('manual', 'final'))
	`, facultyID, sessionID, courseID, date).Scan(&count)
	return count, err
}

// StoredPhotos returns each student's stored scanned photo, keyed by id.
func (r *Repository) StoredPhotos(ctx context.Context, studentIDs []int) (map[int]string, error) {
	if len(studentIDs) == 0 {
		return map[int]string{}, nil
	}

	args := make([]any, 0, len(studentIDs))
	ph := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		args = append(args, id)
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
	}

	rows, err := r.q.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, scanned_photo FROM students WHERE id IN (%s)
	`, strings.Join(ph, ",")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make(map[int]string)
	for rows.Next() {
		var id int
		var photo sql.NullString
		if err := rows.Scan(&id, &photo); err != nil {
			return nil, err
		}
		if photo.Valid {
			photos[id] = photo.String
		}
	}
	return photos, rows.Err()
}

// UpsertRecord writes one student's row, overwriting status, mode and photo
// and refreshing the timestamp on the group's unique key.
func (r *Repository) UpsertRecord(ctx context.Context, facultyID, sessionID, courseID int, date string, rec Record, mode string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO attendance (faculty_id, session_id, course_id, student_id, date, status, mode, scanned_photo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		ON CONFLICT (session_id, course_id, student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			mode = EXCLUDED.mode,
			scanned_photo = EXCLUDED.scanned_photo,
			created_at = NOW()
	`, facultyID, sessionID, courseID, rec.StudentID, date, rec.Status, mode, rec.ScannedPhoto)
	return err
}

// MarkFinalized sets the finalized flag on the whole group.
func (r *Repository) MarkFinalized(ctx context.Context, facultyID, sessionID, courseID int, date string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE attendance SET finalized = TRUE
		WHERE faculty_id = $1 AND session_id = $2 AND course_id = $3 AND date = $4
	`, facultyID, sessionID, courseID, date)
	return err
}

// GroupStatus returns counts and last-writer info for the group.
func (r *Repository) GroupStatus(ctx context.Context, facultyID, sessionID, courseID int, date string) (Status, error) {
	var st Status
	var lastMode, lastTime sql.NullString
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       SUM(CASE WHEN (finalized OR mode IN ('manual','final')) THEN 1 ELSE 0 END),
		       MAX(mode),
		       TO_CHAR(MAX(created_at), 'YYYY-MM-DD HH24:MI:SS')
		FROM attendance
		WHERE faculty_id = $1 AND session_id = $2 AND course_id = $3 AND date = $4
	`, facultyID, sessionID, courseID, date).Scan(&st.Count, &nullInt{&st.FinalCount}, &lastMode, &lastTime)
	if err != nil {
		return Status{}, err
	}
	if lastMode.Valid {
		st.LastMode = &lastMode.String
	}
	if lastTime.Valid {
		st.LastTime = &lastTime.String
	}
	st.Exists = st.FinalCount > 0
	return st, nil
}

// nullInt scans a nullable integer aggregate into an int, defaulting to 0.
type nullInt struct{ v *int }

func (n *nullInt) Scan(src any) error {
	if src == nil {
		*n.v = 0
		return nil
	}
	switch t := src.(type) {
	case int64:
		*n.v = int(t)
		return nil
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}

// StudentWithFaceHash finds another student already holding the fingerprint.
func (r *Repository) StudentWithFaceHash(ctx context.Context, hash string, excludeStudentID int) (*ProxyMatch, error) {
	var m ProxyMatch
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, registration_no FROM students WHERE face_hash = $1 AND id <> $2 LIMIT 1
	`, hash, excludeStudentID).Scan(&m.ID, &m.Name, &m.RegistrationNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetFaceHash stores the fingerprint on the submitting student.
func (r *Repository) SetFaceHash(ctx context.Context, studentID int, hash string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE students SET face_hash = $1 WHERE id = $2`, hash, studentID)
	return err
}
