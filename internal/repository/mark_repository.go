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

// MarkRepository provides database access for grades.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository creates a new instance of MarkRepository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Create inserts a new mark.
func (r *MarkRepository) Create(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mark.Date.IsZero() {
		mark.Date = now
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}

	const query = `INSERT INTO marks (id, student_id, teacher_id, subject_id, value, description, date, created_at) VALUES (:id, :student_id, :teacher_id, :subject_id, :value, :description, :date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("create mark: %w", err)
	}
	return nil
}

// FindByID returns a mark by identifier.
func (r *MarkRepository) FindByID(ctx context.Context, id string) (*models.Mark, error) {
	const query = `SELECT id, student_id, teacher_id, subject_id, value, description, date, created_at FROM marks WHERE id = $1 LIMIT 1`
	var mark models.Mark
	if err := r.db.GetContext(ctx, &mark, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find mark by id: %w", err)
	}
	return &mark, nil
}

// ListForStudentSubject returns a student's marks in one subject, newest first.
func (r *MarkRepository) ListForStudentSubject(ctx context.Context, studentID, subjectID string) ([]models.Mark, error) {
	const query = `SELECT m.id, m.student_id, m.teacher_id, m.subject_id, s.name AS subject_name, m.value, m.description, m.date, m.created_at
        FROM marks m
        JOIN subjects s ON s.id = m.subject_id
        WHERE m.student_id = $1 AND m.subject_id = $2
        ORDER BY m.date DESC`
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, studentID, subjectID); err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	return marks, nil
}

// Update modifies the value and description of a mark.
func (r *MarkRepository) Update(ctx context.Context, mark *models.Mark) error {
	const query = `UPDATE marks SET value = :value, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("update mark: %w", err)
	}
	return nil
}

// Delete removes a mark.
func (r *MarkRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM marks WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete mark: %w", err)
	}
	return nil
}
