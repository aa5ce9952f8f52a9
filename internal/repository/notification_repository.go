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

// NotificationRepository provides database access for student notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification. The kind discriminant must already be set.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.Date.IsZero() {
		n.Date = now
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	const query = `INSERT INTO notifications (id, kind, student_id, teacher_id, subject_id, value, is_motivated, description, date, created_at) VALUES (:id, :kind, :student_id, :teacher_id, :subject_id, :value, :is_motivated, :description, :date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForStudent returns a student's notifications, newest first, with the
// subject and teacher display names joined in.
func (r *NotificationRepository) ListForStudent(ctx context.Context, studentID string) ([]models.Notification, error) {
	const query = `SELECT n.id, n.kind, n.student_id, n.teacher_id, n.subject_id,
        s.name AS subject_name, TRIM(t.first_name || ' ' || t.last_name) AS teacher_name,
        n.value, n.is_motivated, n.description, n.date, n.created_at
        FROM notifications n
        JOIN subjects s ON s.id = n.subject_id
        JOIN teachers t ON t.id = n.teacher_id
        WHERE n.student_id = $1
        ORDER BY n.created_at DESC`
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, studentID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// FindByID returns a notification by identifier.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	const query = `SELECT id, kind, student_id, teacher_id, subject_id, value, is_motivated, description, date, created_at FROM notifications WHERE id = $1 LIMIT 1`
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification by id: %w", err)
	}
	return &n, nil
}

// Delete removes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notifications WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
