package models

import "time"

// Class is a group of students sharing a timetable.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Subject is a taught discipline. Names are unique.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassSubject binds a subject (and the teacher delivering it) to a class.
type ClassSubject struct {
	ClassID   string `db:"class_id" json:"class_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
}

// RosterEntry is a student in a class roster with per-subject statistics.
type RosterEntry struct {
	Student           Student   `json:"student"`
	Marks             []Mark    `json:"marks,omitempty"`
	Absences          []Absence `json:"absences,omitempty"`
	AverageMark       float64   `json:"average_mark"`
	TotalAbsences     int       `json:"total_absences"`
	MotivatedAbsences int       `json:"motivated_absences"`
}

// ClassRoster is the teacher-facing view of one class.
type ClassRoster struct {
	Class    Class         `json:"class"`
	Students []RosterEntry `json:"students"`
}

// AssignStudentsRequest adds students to a class.
type AssignStudentsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
}

// AssignSubjectRequest binds a subject and its teacher to a class.
type AssignSubjectRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// CreateClassRequest creates a new class.
type CreateClassRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateSubjectRequest creates a new subject.
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}
