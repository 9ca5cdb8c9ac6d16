package catalog

import (
	"context"
	"database/sql"
)

// dayOrder sorts Mon..Sat chronologically in SQL.
const dayOrder = `array_position(ARRAY['Mon','Tue','Wed','Thu','Fri','Sat'], ts.day)`

// Timeslot is the reference grid cell.
type Timeslot struct {
	ID        int    `json:"id"`
	Day       string `json:"day"`
	Session   int    `json:"session"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TimetableRow is the fully joined timetable view.
type TimetableRow struct {
	ID              int     `json:"id"`
	Room            *string `json:"room,omitempty"`
	DurationPeriods int     `json:"duration_periods"`
	TimeslotID      int     `json:"timeslot_id"`
	Day             string  `json:"day"`
	Session         int     `json:"session"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	CourseID        int     `json:"course_id"`
	CourseCode      string  `json:"course_code"`
	CourseName      string  `json:"course_name"`
	CourseType      string  `json:"course_type"`
	FacultyID       int     `json:"faculty_id"`
	FacultyName     string  `json:"faculty_name"`
	SectionID       int     `json:"section_id"`
	SectionName     string  `json:"section_name"`
	Semester        int     `json:"semester"`
	StartYear       int     `json:"start_year"`
	EndYear         int     `json:"end_year"`
	BatchName       string  `json:"batch_name"`
	DepartmentName  string  `json:"department_name"`
	ProgramName     string  `json:"program_name"`
}

// Session is one teaching slot in a faculty's day view.
type Session struct {
	SessionID   int    `json:"session_id"`
	Session     int    `json:"session"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Day         string `json:"day"`
	CourseID    int    `json:"course_id"`
	CourseCode  string `json:"course_code"`
	CourseName  string `json:"course_name"`
	SectionID   int    `json:"section_id"`
	SectionName string `json:"section_name"`
	Semester    int    `json:"semester"`
}

// SessionStudent is a roster row with the student's mark for the class-date,
// defaulting to Absent when no row exists yet.
type SessionStudent struct {
	ID             int     `json:"id"`
	RegistrationNo string  `json:"registration_no"`
	Name           string  `json:"name"`
	Photo          *string `json:"photo,omitempty"`
	Status         string  `json:"status"`
	ScannedPhoto   *string `json:"scanned_photo,omitempty"`
	LastMode       *string `json:"last_mode,omitempty"`
	LastAttendedAt *string `json:"last_attended_at,omitempty"`
}

// AttendanceRow is the dean's section/date view.
type AttendanceRow struct {
	ID             int    `json:"id"`
	Date           string `json:"date"`
	Status         string `json:"status"`
	Mode           string `json:"mode"`
	StudentID      int    `json:"student_id"`
	RegistrationNo string `json:"registration_no"`
	StudentName    string `json:"student_name"`
	CourseID       int    `json:"course_id"`
	CourseCode     string `json:"course_code"`
	CourseName     string `json:"course_name"`
	FacultyID      int    `json:"faculty_id"`
	FacultyName    string `json:"faculty_name"`
	SectionName    string `json:"section_name"`
	Semester       int    `json:"semester"`
}

// StudentTotals is per-student counts for a section.
type StudentTotals struct {
	StudentID      int    `json:"student_id"`
	RegistrationNo string `json:"registration_no"`
	StudentName    string `json:"student_name"`
	TotalClasses   int    `json:"total_classes"`
	PresentCount   int    `json:"present_count"`
	AbsentCount    int    `json:"absent_count"`
}

// HistoryItem is one row of a student's own attendance history.
type HistoryItem struct {
	Date    string `json:"date"`
	Course  string `json:"course"`
	Session int    `json:"session"`
	Status  string `json:"status"`
}

// Summary is a student's aggregate attendance, also the summary-cache shape.
type Summary struct {
	TotalSessions int `json:"totalSessions"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Percentage    int `json:"percentage"`
}

// ListTimeslots returns the grid ordered by day then session.
func (r *Repository) ListTimeslots(ctx context.Context) ([]Timeslot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts.id, ts.day, ts.session, ts.start_time, ts.end_time
		FROM timeslot ts
		ORDER BY `+dayOrder+`, ts.session
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Timeslot
	for rows.Next() {
		var ts Timeslot
		if err := rows.Scan(&ts.ID, &ts.Day, &ts.Session, &ts.StartTime, &ts.EndTime); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

const timetableSelect = `
	SELECT tt.id, tt.room, tt.duration_periods,
	       ts.id, ts.day, ts.session, ts.start_time, ts.end_time,
	       c.id, c.code, c.name, c.type,
	       f.id, f.name,
	       s.id, s.name, s.semester,
	       b.start_year, b.end_year, b.start_year || '-' || b.end_year,
	       d.name, p.name
	FROM timetable tt
	JOIN course c ON tt.course_id = c.id
	JOIN faculty f ON tt.faculty_id = f.id
	JOIN timeslot ts ON tt.timeslot_id = ts.id
	JOIN section s ON tt.section_id = s.id
	JOIN department d ON s.department_id = d.id
	JOIN program p ON d.program_id = p.id
`

// SectionTimetable returns a section's full week.
func (r *Repository) SectionTimetable(ctx context.Context, sectionID int) ([]TimetableRow, error) {
	return r.queryTimetable(ctx, timetableSelect+` WHERE tt.section_id = $1 ORDER BY `+dayOrder+`, ts.session`, sectionID)
}

// FacultyTimetable returns a faculty member's full week.
func (r *Repository) FacultyTimetable(ctx context.Context, facultyID int) ([]TimetableRow, error) {
	return r.queryTimetable(ctx, timetableSelect+` WHERE tt.faculty_id = $1 ORDER BY `+dayOrder+`, ts.session`, facultyID)
}

func (r *Repository) queryTimetable(ctx context.Context, query string, args ...any) ([]TimetableRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimetableRow
	for rows.Next() {
		var t TimetableRow
		if err := rows.Scan(&t.ID, &t.Room, &t.DurationPeriods,
			&t.TimeslotID, &t.Day, &t.Session, &t.StartTime, &t.EndTime,
			&t.CourseID, &t.CourseCode, &t.CourseName, &t.CourseType,
			&t.FacultyID, &t.FacultyName,
			&t.SectionID, &t.SectionName, &t.Semester,
			&t.StartYear, &t.EndYear, &t.BatchName,
			&t.DepartmentName, &t.ProgramName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// FacultySessions returns the faculty's teaching slots for a weekday.
func (r *Repository) FacultySessions(ctx context.Context, facultyID int, day string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ts.id, ts.session, ts.start_time, ts.end_time, ts.day,
		       c.id, c.code, c.name,
		       s.id, s.name, s.semester
		FROM timetable tt
		JOIN timeslot ts ON tt.timeslot_id = ts.id
		JOIN course c ON tt.course_id = c.id
		JOIN section s ON tt.section_id = s.id
		WHERE tt.faculty_id = $1 AND ts.day = $2
		ORDER BY ts.session ASC
	`, facultyID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.SessionID, &s.Session, &s.StartTime, &s.EndTime, &s.Day,
			&s.CourseID, &s.CourseCode, &s.CourseName,
			&s.SectionID, &s.SectionName, &s.Semester); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SessionStudents returns the roster for a timetable slot with each student's
// row for the class-date. The unique attendance key guarantees at most one
// row per student, so a plain LEFT JOIN suffices.
func (r *Repository) SessionStudents(ctx context.Context, facultyID, sessionID, courseID int, date string) ([]SessionStudent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT st.id, st.registration_no, st.name, st.photo,
		       COALESCE(a.status, 'Absent'),
		       a.scanned_photo,
		       a.mode,
		       TO_CHAR(a.created_at, 'YYYY-MM-DD HH24:MI:SS')
		FROM timetable tt
		JOIN students st ON st.section_id = tt.section_id
		LEFT JOIN attendance a
		       ON a.student_id = st.id
		      AND a.session_id = $1 AND a.course_id = $2 AND a.date = $3
		WHERE tt.timeslot_id = $1
		  AND tt.faculty_id = $4
		  AND tt.course_id = $2
		ORDER BY st.registration_no ASC, st.id ASC
	`, sessionID, courseID, date, facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionStudent
	for rows.Next() {
		var s SessionStudent
		if err := rows.Scan(&s.ID, &s.RegistrationNo, &s.Name, &s.Photo,
			&s.Status, &s.ScannedPhoto, &s.LastMode, &s.LastAttendedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SectionAttendance returns every mark in a section on a date.
func (r *Repository) SectionAttendance(ctx context.Context, sectionID int, date string) ([]AttendanceRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, TO_CHAR(a.date, 'YYYY-MM-DD'), a.status, a.mode,
		       st.id, st.registration_no, st.name,
		       c.id, c.code, c.name,
		       f.id, f.name,
		       s.name, s.semester
		FROM attendance a
		JOIN students st ON a.student_id = st.id
		JOIN course c ON a.course_id = c.id
		JOIN faculty f ON a.faculty_id = f.id
		JOIN section s ON st.section_id = s.id
		WHERE st.section_id = $1 AND a.date = $2
		ORDER BY st.registration_no
	`, sectionID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttendanceRow
	for rows.Next() {
		var a AttendanceRow
		if err := rows.Scan(&a.ID, &a.Date, &a.Status, &a.Mode,
			&a.StudentID, &a.RegistrationNo, &a.StudentName,
			&a.CourseID, &a.CourseCode, &a.CourseName,
			&a.FacultyID, &a.FacultyName,
			&a.SectionName, &a.Semester); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SectionSummary returns per-student totals across all recorded classes.
func (r *Repository) SectionSummary(ctx context.Context, sectionID int) ([]StudentTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT st.id, st.registration_no, st.name,
		       COUNT(*),
		       SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END)
		FROM attendance a
		JOIN students st ON a.student_id = st.id
		WHERE st.section_id = $1
		GROUP BY st.id, st.registration_no, st.name
		ORDER BY st.registration_no
	`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudentTotals
	for rows.Next() {
		var t StudentTotals
		if err := rows.Scan(&t.StudentID, &t.RegistrationNo, &t.StudentName,
			&t.TotalClasses, &t.PresentCount, &t.AbsentCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateAttendanceStatus rewrites one record's status (dean modify flow).
func (r *Repository) UpdateAttendanceStatus(ctx context.Context, id int, status string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE attendance SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StudentAttendance returns a student's own history, newest first.
func (r *Repository) StudentAttendance(ctx context.Context, studentID int) ([]HistoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT TO_CHAR(a.date, 'YYYY-MM-DD'), c.code || ' - ' || c.name, a.session_id, a.status
		FROM attendance a
		JOIN course c ON a.course_id = c.id
		WHERE a.student_id = $1
		ORDER BY a.date DESC, a.session_id ASC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryItem
	for rows.Next() {
		var h HistoryItem
		if err := rows.Scan(&h.Date, &h.Course, &h.Session, &h.Status); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// StudentSummary aggregates a student's attendance counts.
func (r *Repository) StudentSummary(ctx context.Context, studentID int) (Summary, error) {
	var s Summary
	var present, absent sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       SUM(CASE WHEN status = 'Present' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN status = 'Absent' THEN 1 ELSE 0 END)
		FROM attendance
		WHERE student_id = $1
	`, studentID).Scan(&s.TotalSessions, &present, &absent)
	if err != nil {
		return Summary{}, err
	}
	s.Present = int(present.Int64)
	s.Absent = int(absent.Int64)
	if s.TotalSessions > 0 {
		s.Percentage = int(float64(s.Present)/float64(s.TotalSessions)*100 + 0.5)
	}
	return s, nil
}
