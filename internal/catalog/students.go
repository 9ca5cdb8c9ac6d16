package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Student carries its joined display names for the admin list.
type Student struct {
	ID             int     `json:"id"`
	RegistrationNo string  `json:"registration_no"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Photo          *string `json:"photo,omitempty"`
	DepartmentID   int     `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	BatchID        int     `json:"batch_id"`
	BatchName      string  `json:"batch_name"`
	SectionID      int     `json:"section_id"`
	SectionName    string  `json:"section_name"`
	Semester       int     `json:"semester"`
}

// NewStudent is the insert payload for single and bulk creation.
type NewStudent struct {
	RegistrationNo string
	Name           string
	Email          string
	Photo          string
	DepartmentID   int
	BatchID        int
	SectionID      int
	Semester       int
}

// Profile is the student self-service view.
type Profile struct {
	ID             int     `json:"id"`
	RegistrationNo string  `json:"registration_no"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	AltEmail       *string `json:"alt_email,omitempty"`
	Mobile         *string `json:"mobile,omitempty"`
	DOB            *string `json:"dob,omitempty"`
	Aadhar         *string `json:"aadhar,omitempty"`
	Address        *string `json:"address,omitempty"`
	Photo          *string `json:"photo,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
	DepartmentCode *string `json:"department_code,omitempty"`
	SectionName    *string `json:"section_name,omitempty"`
	StartYear      *int    `json:"start_year,omitempty"`
	EndYear        *int    `json:"end_year,omitempty"`
	Semester       int     `json:"semester"`
	IsActive       bool    `json:"is_active"`
}

// ProfileUpdate holds the optional profile fields; empty strings are skipped.
type ProfileUpdate struct {
	DOB      string
	Mobile   string
	AltEmail string
	Aadhar   string
	Address  string
	Photo    string
}

// SupportStudent is the IT-desk listing shape.
type SupportStudent struct {
	ID             int     `json:"id"`
	RegistrationNo string  `json:"registration_no"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Semester       int     `json:"semester"`
	DepartmentName *string `json:"department_name,omitempty"`
	SectionName    *string `json:"section_name,omitempty"`
	Issue          string  `json:"issue,omitempty"`
}

// ListStudents returns all students with joined names.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.registration_no, s.name, s.email, s.photo,
		       s.department_id, d.name,
		       s.batch_id, b.start_year || '-' || b.end_year,
		       s.section_id, sec.name,
		       s.semester
		FROM students s
		JOIN department d ON s.department_id = d.id
		JOIN batch b ON s.batch_id = b.id
		JOIN section sec ON s.section_id = sec.id
		ORDER BY s.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.RegistrationNo, &s.Name, &s.Email, &s.Photo,
			&s.DepartmentID, &s.DepartmentName,
			&s.BatchID, &s.BatchName,
			&s.SectionID, &s.SectionName,
			&s.Semester); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateStudent inserts one student.
func (r *Repository) CreateStudent(ctx context.Context, in NewStudent) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO students (registration_no, name, email, photo, department_id, batch_id, section_id, semester)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8) RETURNING id
	`, in.RegistrationNo, in.Name, in.Email, in.Photo, in.DepartmentID, in.BatchID, in.SectionID, in.Semester).Scan(&id)
	return id, err
}

// UpdateStudent rewrites a student's admin-managed fields.
func (r *Repository) UpdateStudent(ctx context.Context, id int, in NewStudent) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET registration_no = $1, name = $2, email = $3, photo = NULLIF($4, ''),
		    department_id = $5, batch_id = $6, section_id = $7, semester = $8
		WHERE id = $9
	`, in.RegistrationNo, in.Name, in.Email, in.Photo, in.DepartmentID, in.BatchID, in.SectionID, in.Semester, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteStudent removes a student by id.
func (r *Repository) DeleteStudent(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BulkInsertStudents inserts parsed CSV rows in one statement.
func (r *Repository) BulkInsertStudents(ctx context.Context, students []NewStudent) error {
	if len(students) == 0 {
		return nil
	}

	args := make([]any, 0, len(students)*8)
	values := make([]string, 0, len(students))
	for _, s := range students {
		base := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, NULLIF($%d, ''), $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, s.RegistrationNo, s.Name, s.Email, s.Photo, s.DepartmentID, s.BatchID, s.SectionID, s.Semester)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (registration_no, name, email, photo, department_id, batch_id, section_id, semester)
		VALUES `+strings.Join(values, ", "), args...)
	return err
}

// StudentProfile returns the self-service profile, preferring the uploaded
// photo over the scanned one.
func (r *Repository) StudentProfile(ctx context.Context, id int) (*Profile, error) {
	var p Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.registration_no, s.name, s.email, s.alt_email, s.mobile,
		       TO_CHAR(s.dob, 'YYYY-MM-DD'), s.aadhar, s.address,
		       COALESCE(s.photo, s.scanned_photo),
		       d.name, d.code, sec.name, b.start_year, b.end_year,
		       s.semester, s.is_active
		FROM students s
		LEFT JOIN department d ON s.department_id = d.id
		LEFT JOIN batch b ON s.batch_id = b.id
		LEFT JOIN section sec ON s.section_id = sec.id
		WHERE s.id = $1
	`, id).Scan(&p.ID, &p.RegistrationNo, &p.Name, &p.Email, &p.AltEmail, &p.Mobile,
		&p.DOB, &p.Aadhar, &p.Address, &p.Photo,
		&p.DepartmentName, &p.DepartmentCode, &p.SectionName, &p.StartYear, &p.EndYear,
		&p.Semester, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStudentProfile applies the provided fields only. Returns the number
// of fields applied so the handler can reject empty updates.
func (r *Repository) UpdateStudentProfile(ctx context.Context, id int, in ProfileUpdate) (int, int64, error) {
	sets := []string{}
	args := []any{}
	add := func(column, value string) {
		if value != "" {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("dob", in.DOB)
	add("mobile", in.Mobile)
	add("alt_email", in.AltEmail)
	add("aadhar", in.Aadhar)
	add("address", in.Address)
	add("photo", in.Photo)

	if len(sets) == 0 {
		return 0, 0, nil
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE students SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return len(sets), 0, err
	}
	affected, err := res.RowsAffected()
	return len(sets), affected, err
}

// DeactivatedStudents lists students with is_active unset.
func (r *Repository) DeactivatedStudents(ctx context.Context) ([]SupportStudent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.registration_no, s.name, s.email, s.semester, d.name, sec.name
		FROM students s
		LEFT JOIN department d ON s.department_id = d.id
		LEFT JOIN section sec ON s.section_id = sec.id
		WHERE NOT s.is_active
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupportStudent
	for rows.Next() {
		var s SupportStudent
		if err := rows.Scan(&s.ID, &s.RegistrationNo, &s.Name, &s.Email, &s.Semester,
			&s.DepartmentName, &s.SectionName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReactivateStudent re-enables a student account.
func (r *Repository) ReactivateStudent(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeviceIssues lists students with locked devices.
func (r *Repository) DeviceIssues(ctx context.Context) ([]SupportStudent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, registration_no, name, email, semester
		FROM students
		WHERE device_locked
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupportStudent
	for rows.Next() {
		var s SupportStudent
		if err := rows.Scan(&s.ID, &s.RegistrationNo, &s.Name, &s.Email, &s.Semester); err != nil {
			return nil, err
		}
		s.Issue = "Device not recognized"
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResetDevice clears the student's device binding and unlocks the account.
func (r *Repository) ResetDevice(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET device_id = NULL, device_locked = FALSE, is_active = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
