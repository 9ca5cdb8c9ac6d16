package store

import "context"

// schema is the idempotent bootstrap DDL. The unique keys matter: the
// attendance key makes the submit upsert atomic at the store level, and the
// face-hash key backs proxy detection.
const schema = `
CREATE TABLE IF NOT EXISTS program (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS batch (
	id SERIAL PRIMARY KEY,
	start_year INT NOT NULL,
	end_year INT NOT NULL
);

CREATE TABLE IF NOT EXISTS department (
	id SERIAL PRIMARY KEY,
	program_id INT NOT NULL REFERENCES program(id),
	name TEXT NOT NULL,
	code TEXT NOT NULL,
	UNIQUE (program_id, code)
);

CREATE TABLE IF NOT EXISTS section (
	id SERIAL PRIMARY KEY,
	department_id INT NOT NULL REFERENCES department(id),
	batch_id INT NOT NULL REFERENCES batch(id),
	semester INT NOT NULL,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS faculty (
	id SERIAL PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	mobile TEXT NOT NULL,
	photo TEXT,
	password TEXT,
	department_id INT NOT NULL REFERENCES department(id)
);

CREATE TABLE IF NOT EXISTS students (
	id SERIAL PRIMARY KEY,
	registration_no TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT,
	photo TEXT,
	scanned_photo TEXT,
	face_hash TEXT UNIQUE,
	dob DATE,
	mobile TEXT,
	alt_email TEXT,
	aadhar TEXT,
	address TEXT,
	device_id TEXT,
	device_locked BOOLEAN NOT NULL DEFAULT FALSE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	department_id INT NOT NULL REFERENCES department(id),
	batch_id INT NOT NULL REFERENCES batch(id),
	section_id INT NOT NULL REFERENCES section(id),
	semester INT NOT NULL
);

CREATE TABLE IF NOT EXISTS course (
	id SERIAL PRIMARY KEY,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT 'Lecture',
	credits INT NOT NULL,
	semester INT NOT NULL,
	department_id INT NOT NULL REFERENCES department(id)
);

CREATE TABLE IF NOT EXISTS timeslot (
	id SERIAL PRIMARY KEY,
	day TEXT NOT NULL,
	session INT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	UNIQUE (day, session)
);

CREATE TABLE IF NOT EXISTS timetable (
	id SERIAL PRIMARY KEY,
	section_id INT NOT NULL REFERENCES section(id),
	course_id INT NOT NULL REFERENCES course(id),
	faculty_id INT NOT NULL REFERENCES faculty(id),
	timeslot_id INT NOT NULL REFERENCES timeslot(id),
	room TEXT,
	duration_periods INT NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS attendance (
	id SERIAL PRIMARY KEY,
	faculty_id INT NOT NULL REFERENCES faculty(id),
	session_id INT NOT NULL REFERENCES timeslot(id),
	course_id INT NOT NULL REFERENCES course(id),
	student_id INT NOT NULL REFERENCES students(id),
	date DATE NOT NULL,
	status TEXT NOT NULL,
	mode TEXT NOT NULL,
	scanned_photo TEXT,
	finalized BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (session_id, course_id, student_id, date)
);

CREATE TABLE IF NOT EXISTS holiday (
	id SERIAL PRIMARY KEY,
	date DATE NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dean (
	id SERIAL PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS it_admins (
	id SERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_timetable_section_slot ON timetable (section_id, timeslot_id);
CREATE INDEX IF NOT EXISTS idx_timetable_faculty_slot ON timetable (faculty_id, timeslot_id);
CREATE INDEX IF NOT EXISTS idx_attendance_group ON attendance (faculty_id, session_id, course_id, date);
`

// EnsureSchema creates all tables and indexes when missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}
