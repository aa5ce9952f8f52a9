package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
	"github.com/marktrack/marktrack-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForStudent(ctx context.Context, studentID string) ([]models.Notification, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	Delete(ctx context.Context, id string) error
}

type notificationStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// NotificationFeed is the list a student fetches along with its unread badge
// count. The badge counts everything in the list since there is no per-item
// read state.
type NotificationFeed struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// NotificationService manages the student notification feed. Writes from the
// grading path go through an in-process queue so that a slow insert never
// delays the teacher's request.
type NotificationService struct {
	notifications notificationRepository
	students      notificationStudentRepository
	queue         *jobs.Queue
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(notifications notificationRepository, students notificationStudentRepository, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		notifications: notifications,
		students:      students,
		metrics:       metrics,
		logger:        logger,
	}
	s.queue = jobs.NewQueue("notifications", s.handleJob, jobs.Options{
		Workers:    2,
		BufferSize: 64,
		Logger:     logger,
	})
	return s
}

// Start launches the background delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Publish enqueues a notification for asynchronous delivery. If the queue is
// unavailable the notification is written synchronously instead so the event
// is never lost.
func (s *NotificationService) Publish(ctx context.Context, n models.Notification) {
	s.metrics.ObserveNotification()
	if err := s.queue.Enqueue(jobs.Job{ID: n.ID, Kind: string(n.Kind), Payload: n}); err != nil {
		s.logger.Warn("notification enqueue failed, writing inline", zap.Error(err))
		if err := s.notifications.Create(ctx, &n); err != nil {
			s.logger.Error("failed to persist notification", zap.Error(err))
		}
	}
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.notifications.Create(ctx, &n)
}

// Feed returns the student's notifications newest first together with the
// unread count.
func (s *NotificationService) Feed(ctx context.Context, userID string) (*NotificationFeed, error) {
	student, err := s.resolveStudent(ctx, userID)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.ListForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	return &NotificationFeed{
		Notifications: notifications,
		UnreadCount:   len(notifications),
	}, nil
}

// Delete removes one of the caller's notifications. Students may only delete
// notifications addressed to them.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	student, err := s.resolveStudent(ctx, userID)
	if err != nil {
		return err
	}

	n, err := s.notifications.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if n.StudentID != student.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another student")
	}

	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

func (s *NotificationService) resolveStudent(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
