package models

import "time"

// Student is the profile record completed by a student after role assignment.
type Student struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	StudentNo  string    `db:"student_no" json:"student_no"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	FatherName string    `db:"father_name" json:"father_name"`
	GovNumber  string    `db:"gov_number" json:"gov_number"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StudentProfileRequest carries the fields submitted on profile completion.
type StudentProfileRequest struct {
	StudentNo  string `json:"student_no" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	FatherName string `json:"father_name" validate:"required"`
	GovNumber  string `json:"gov_number" validate:"required"`
}

// StudentProfile is the student's own view of their record.
type StudentProfile struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	StudentNo  string `json:"student_no"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FatherName string `json:"father_name"`
	GovNumber  string `json:"gov_number"`
}

// StudentSubject is a subject taught in the student's class along with the
// assigned teacher's display name.
type StudentSubject struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
