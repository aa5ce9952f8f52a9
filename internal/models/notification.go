package models

import "time"

// NotificationKind discriminates the two notification variants. The kind is
// set once at creation time; consumers must not infer the variant from the
// presence or nullability of the payload fields.
type NotificationKind string

const (
	NotificationMark    NotificationKind = "mark"
	NotificationAbsence NotificationKind = "absence"
)

// Notification is a student-facing projection of a newly recorded mark or
// absence. Value is populated for mark notifications, IsMotivated for absence
// notifications; exactly one of the two is ever present.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	Kind        NotificationKind `db:"kind" json:"kind"`
	StudentID   string           `db:"student_id" json:"student_id"`
	TeacherID   string           `db:"teacher_id" json:"teacher_id"`
	SubjectID   string           `db:"subject_id" json:"subject_id"`
	SubjectName string           `db:"subject_name" json:"subject_name"`
	TeacherName string           `db:"teacher_name" json:"teacher_name"`
	Value       *float64         `db:"value" json:"value,omitempty"`
	IsMotivated *bool            `db:"is_motivated" json:"is_motivated,omitempty"`
	Description string           `db:"description" json:"description"`
	Date        time.Time        `db:"date" json:"date"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
