package models

import (
	"database/sql"
	"time"
)

// Teacher is the profile record completed by a teacher after role assignment.
// SubjectID is the single subject the teacher is certified to teach.
type Teacher struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	FirstName  string         `db:"first_name" json:"first_name"`
	LastName   string         `db:"last_name" json:"last_name"`
	FatherName string         `db:"father_name" json:"father_name"`
	GovNumber  string         `db:"gov_number" json:"gov_number"`
	SubjectID  sql.NullString `db:"subject_id" json:"subject_id,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// TeacherProfileRequest carries the fields submitted on profile completion.
type TeacherProfileRequest struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	FatherName string `json:"father_name" validate:"required"`
	GovNumber  string `json:"gov_number" validate:"required"`
	SubjectID  string `json:"subject_id" validate:"required"`
}

// TeacherProfile is the teacher's own view of their record.
type TeacherProfile struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FatherName  string `json:"father_name"`
	GovNumber   string `json:"gov_number"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
}
