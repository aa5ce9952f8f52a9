package models

import "time"

// Mark is a numeric grade recorded by a teacher for a student and subject.
type Mark struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name,omitempty"`
	Value       float64   `db:"value" json:"value"`
	Description string    `db:"description" json:"description"`
	Date        time.Time `db:"date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateMarkRequest records a grade for a student.
type CreateMarkRequest struct {
	StudentID   string    `json:"student_id" validate:"required"`
	SubjectID   string    `json:"subject_id" validate:"required"`
	Value       float64   `json:"value" validate:"required,gte=1,lte=10"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// UpdateMarkRequest edits an existing grade.
type UpdateMarkRequest struct {
	Value       *float64 `json:"value,omitempty" validate:"omitempty,gte=1,lte=10"`
	Description *string  `json:"description,omitempty"`
}
