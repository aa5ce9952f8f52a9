package models

import "time"

// Absence is a recorded non-attendance event, optionally flagged motivated.
type Absence struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name,omitempty"`
	IsMotivated bool      `db:"is_motivated" json:"is_motivated"`
	Description string    `db:"description" json:"description"`
	Date        time.Time `db:"date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateAbsenceRequest records an absence for a student.
type CreateAbsenceRequest struct {
	StudentID   string    `json:"student_id" validate:"required"`
	SubjectID   string    `json:"subject_id" validate:"required"`
	IsMotivated bool      `json:"is_motivated"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// UpdateAbsenceRequest edits an existing absence.
type UpdateAbsenceRequest struct {
	IsMotivated *bool   `json:"is_motivated,omitempty"`
	Description *string `json:"description,omitempty"`
}
