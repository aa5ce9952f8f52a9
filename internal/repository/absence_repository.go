package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marktrack/marktrack-api/internal/models"
)

// AbsenceRepository provides database access for absences.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository creates a new instance of AbsenceRepository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// Create inserts a new absence.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if absence.Date.IsZero() {
		absence.Date = now
	}
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = now
	}

	const query = `INSERT INTO absences (id, student_id, teacher_id, subject_id, is_motivated, description, date, created_at) VALUES (:id, :student_id, :teacher_id, :subject_id, :is_motivated, :description, :date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// FindByID returns an absence by identifier.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	const query = `SELECT id, student_id, teacher_id, subject_id, is_motivated, description, date, created_at FROM absences WHERE id = $1 LIMIT 1`
	var absence models.Absence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find absence by id: %w", err)
	}
	return &absence, nil
}

// ListForStudentSubject returns a student's absences in one subject, newest first.
func (r *AbsenceRepository) ListForStudentSubject(ctx context.Context, studentID, subjectID string) ([]models.Absence, error) {
	const query = `SELECT a.id, a.student_id, a.teacher_id, a.subject_id, s.name AS subject_name, a.is_motivated, a.description, a.date, a.created_at
        FROM absences a
        JOIN subjects s ON s.id = a.subject_id
        WHERE a.student_id = $1 AND a.subject_id = $2
        ORDER BY a.date DESC`
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, studentID, subjectID); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return absences, nil
}

// Update modifies the motivation flag and description of an absence.
func (r *AbsenceRepository) Update(ctx context.Context, absence *models.Absence) error {
	const query = `UPDATE absences SET is_motivated = :is_motivated, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("update absence: %w", err)
	}
	return nil
}

// Delete removes an absence.
func (r *AbsenceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM absences WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return nil
}
