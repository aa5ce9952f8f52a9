package models

import "time"

// UserRole represents the roles an account can hold. New accounts start as
// pending until the holder redeems an onboarding code.
type UserRole string

const (
	RolePending UserRole = "pending"
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// LifecycleStatus is the coarse-grained onboarding stage of an account.
// It only moves forward: incomplete -> awaiting_details -> active.
type LifecycleStatus string

const (
	StatusIncomplete      LifecycleStatus = "incomplete"
	StatusAwaitingDetails LifecycleStatus = "awaiting_details"
	StatusActive          LifecycleStatus = "active"
)

// User represents an account stored in the users table.
type User struct {
	ID           string          `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Role         UserRole        `db:"role" json:"role"`
	Status       LifecycleStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
