// Package catalog persists the ERP reference data (programs, batches,
// departments, sections, courses, faculty, students, holidays, timeslots)
// and the joined read views the dashboards consume.
package catalog

import (
	"context"
	"database/sql"
)

// Repository runs the catalog queries against Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Department includes the owning program.
type Department struct {
	ID        int    `json:"id"`
	ProgramID int    `json:"program_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

// Program is top-level reference data.
type Program struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Batch is an admission-year cohort.
type Batch struct {
	ID        int    `json:"id"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

// Section carries its joined display names.
type Section struct {
	ID             int    `json:"id"`
	Name           string `json:"section_name"`
	Semester       int    `json:"semester"`
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name"`
	ProgramID      int    `json:"program_id"`
	ProgramName    string `json:"program_name"`
	BatchID        int    `json:"batch_id"`
	BatchName      string `json:"batch_name"`
}

// Course carries its department name.
type Course struct {
	ID             int    `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Credits        int    `json:"credits"`
	Semester       int    `json:"semester"`
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// Faculty is a teaching staff record.
type Faculty struct {
	ID             int     `json:"id"`
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Mobile         string  `json:"mobile"`
	Photo          *string `json:"photo,omitempty"`
	DepartmentID   int     `json:"department_id"`
	DepartmentName string  `json:"department_name"`
}

// Holiday blocks a calendar date.
type Holiday struct {
	ID     int    `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// ListDepartments returns all departments.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, program_id, name, code FROM department ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.ProgramID, &d.Name, &d.Code); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateDepartment inserts a department; a duplicate (program, code) pair
// surfaces as a unique violation.
func (r *Repository) CreateDepartment(ctx context.Context, programID int, name, code string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO department (program_id, name, code) VALUES ($1, $2, $3) RETURNING id
	`, programID, name, code).Scan(&id)
	return id, err
}

// UpdateDepartment rewrites a department.
func (r *Repository) UpdateDepartment(ctx context.Context, id, programID int, name, code string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE department SET program_id = $1, name = $2, code = $3 WHERE id = $4
	`, programID, name, code, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteDepartment removes a department by id.
func (r *Repository) DeleteDepartment(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM department WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListPrograms returns all programs.
func (r *Repository) ListPrograms(ctx context.Context) ([]Program, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM program ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProgramDepartments returns the departments under a program.
func (r *Repository) ProgramDepartments(ctx context.Context, programID int) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, program_id, name, code FROM department WHERE program_id = $1 ORDER BY id
	`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.ProgramID, &d.Name, &d.Code); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListBatches returns all batches.
func (r *Repository) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, start_year, end_year FROM batch ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.StartYear, &b.EndYear); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListSections returns sections with their joined display names.
func (r *Repository) ListSections(ctx context.Context) ([]Section, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.semester,
		       d.id, d.name,
		       p.id, p.name,
		       b.id, b.start_year || '-' || b.end_year
		FROM section s
		JOIN department d ON s.department_id = d.id
		JOIN program p ON d.program_id = p.id
		JOIN batch b ON s.batch_id = b.id
		ORDER BY s.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Name, &s.Semester,
			&s.DepartmentID, &s.DepartmentName,
			&s.ProgramID, &s.ProgramName,
			&s.BatchID, &s.BatchName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateSection inserts a section.
func (r *Repository) CreateSection(ctx context.Context, departmentID, batchID, semester int, name string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO section (department_id, batch_id, semester, name) VALUES ($1, $2, $3, $4) RETURNING id
	`, departmentID, batchID, semester, name).Scan(&id)
	return id, err
}

// UpdateSection rewrites a section.
func (r *Repository) UpdateSection(ctx context.Context, id, departmentID, batchID, semester int, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE section SET department_id = $1, batch_id = $2, semester = $3, name = $4 WHERE id = $5
	`, departmentID, batchID, semester, name, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSection removes a section by id.
func (r *Repository) DeleteSection(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM section WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListCourses returns courses with department names.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.code, c.name, c.type, c.credits, c.semester, d.id, d.name
		FROM course c
		JOIN department d ON c.department_id = d.id
		ORDER BY c.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Type, &c.Credits, &c.Semester,
			&c.DepartmentID, &c.DepartmentName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCourse inserts a course.
func (r *Repository) CreateCourse(ctx context.Context, code, name, courseType string, credits, semester, departmentID int) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO course (code, name, type, credits, semester, department_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, code, name, courseType, credits, semester, departmentID).Scan(&id)
	return id, err
}

// UpdateCourse rewrites a course.
func (r *Repository) UpdateCourse(ctx context.Context, id int, code, name, courseType string, credits, semester, departmentID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE course SET code = $1, name = $2, type = $3, credits = $4, semester = $5, department_id = $6
		WHERE id = $7
	`, code, name, courseType, credits, semester, departmentID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteCourse removes a course by id.
func (r *Repository) DeleteCourse(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListFaculty returns faculty with department names.
func (r *Repository) ListFaculty(ctx context.Context) ([]Faculty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.name, f.email, f.mobile, f.photo, f.department_id, d.name
		FROM faculty f
		JOIN department d ON f.department_id = d.id
		ORDER BY f.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Faculty
	for rows.Next() {
		var f Faculty
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Email, &f.Mobile, &f.Photo,
			&f.DepartmentID, &f.DepartmentName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFaculty inserts a faculty record.
func (r *Repository) CreateFaculty(ctx context.Context, userID, name, email, mobile, photo string, departmentID int) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO faculty (user_id, name, email, mobile, photo, department_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6) RETURNING id
	`, userID, name, email, mobile, photo, departmentID).Scan(&id)
	return id, err
}

// UpdateFaculty rewrites a faculty record.
func (r *Repository) UpdateFaculty(ctx context.Context, id int, userID, name, email, mobile, photo string, departmentID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE faculty SET user_id = $1, name = $2, email = $3, mobile = $4, photo = NULLIF($5, ''), department_id = $6
		WHERE id = $7
	`, userID, name, email, mobile, photo, departmentID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteFaculty removes a faculty record by id.
func (r *Repository) DeleteFaculty(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListHolidays returns holidays newest first.
func (r *Repository) ListHolidays(ctx context.Context) ([]Holiday, error) {
	return r.queryHolidays(ctx, `SELECT id, TO_CHAR(date, 'YYYY-MM-DD'), reason FROM holiday ORDER BY date DESC`)
}

// HolidaysAscending returns holidays in calendar order for timetable views.
func (r *Repository) HolidaysAscending(ctx context.Context) ([]Holiday, error) {
	return r.queryHolidays(ctx, `SELECT id, TO_CHAR(date, 'YYYY-MM-DD'), reason FROM holiday ORDER BY date`)
}

func (r *Repository) queryHolidays(ctx context.Context, query string) ([]Holiday, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Reason); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CreateHoliday inserts a holiday.
func (r *Repository) CreateHoliday(ctx context.Context, date, reason string) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO holiday (date, reason) VALUES ($1, $2) RETURNING id
	`, date, reason).Scan(&id)
	return id, err
}

// UpdateHoliday rewrites a holiday.
func (r *Repository) UpdateHoliday(ctx context.Context, id int, date, reason string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE holiday SET date = $1, reason = $2 WHERE id = $3`, date, reason, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteHoliday removes a holiday by id.
func (r *Repository) DeleteHoliday(ctx context.Context, id int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holiday WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
