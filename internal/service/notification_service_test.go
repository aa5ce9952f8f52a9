package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type mockNotificationRepo struct {
	mu         sync.Mutex
	byStudent  map[string][]models.Notification
	byID       map[string]*models.Notification
	created    []models.Notification
	deletedIDs []string
}

func newMockNotificationRepo(notifications ...models.Notification) *mockNotificationRepo {
	m := &mockNotificationRepo{
		byStudent: make(map[string][]models.Notification),
		byID:      make(map[string]*models.Notification),
	}
	for i := range notifications {
		n := notifications[i]
		m.byStudent[n.StudentID] = append(m.byStudent[n.StudentID], n)
		m.byID[n.ID] = &notifications[i]
	}
	return m
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *n)
	m.byStudent[n.StudentID] = append(m.byStudent[n.StudentID], *n)
	return nil
}

func (m *mockNotificationRepo) ListForStudent(ctx context.Context, studentID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byStudent[studentID], nil
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.byID[id]; ok {
		return n, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedIDs = append(m.deletedIDs, id)
	delete(m.byID, id)
	return nil
}

func (m *mockNotificationRepo) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

func markNotification(id, studentID string, value float64) models.Notification {
	return models.Notification{
		ID:          id,
		Kind:        models.NotificationMark,
		StudentID:   studentID,
		SubjectName: "Mathematics",
		Value:       &value,
		Date:        time.Now().UTC(),
	}
}

func TestNotificationServiceFeed(t *testing.T) {
	students := newMockStudentRepo()
	students.byUserID["u1"] = &models.Student{ID: "s1", UserID: "u1"}
	repo := newMockNotificationRepo(
		markNotification("n1", "s1", 9),
		markNotification("n2", "s1", 7),
		markNotification("n3", "s2", 4),
	)
	svc := NewNotificationService(repo, students, nil, zap.NewNop())

	feed, err := svc.Feed(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, feed.Notifications, 2)
	assert.Equal(t, len(feed.Notifications), feed.UnreadCount)
}

func TestNotificationServiceFeedEmpty(t *testing.T) {
	students := newMockStudentRepo()
	students.byUserID["u1"] = &models.Student{ID: "s1", UserID: "u1"}
	svc := NewNotificationService(newMockNotificationRepo(), students, nil, zap.NewNop())

	feed, err := svc.Feed(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, feed.Notifications)
	assert.Empty(t, feed.Notifications)
	assert.Zero(t, feed.UnreadCount)
}

func TestNotificationServiceDelete(t *testing.T) {
	students := newMockStudentRepo()
	students.byUserID["u1"] = &models.Student{ID: "s1", UserID: "u1"}
	repo := newMockNotificationRepo(markNotification("n1", "s1", 9))
	svc := NewNotificationService(repo, students, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "u1", "n1"))
	assert.Equal(t, []string{"n1"}, repo.deletedIDs)
}

func TestNotificationServiceDeleteForeignNotification(t *testing.T) {
	students := newMockStudentRepo()
	students.byUserID["u1"] = &models.Student{ID: "s1", UserID: "u1"}
	repo := newMockNotificationRepo(markNotification("n9", "s2", 9))
	svc := NewNotificationService(repo, students, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "u1", "n9")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.deletedIDs)
}

func TestNotificationServiceDeleteUnknown(t *testing.T) {
	students := newMockStudentRepo()
	students.byUserID["u1"] = &models.Student{ID: "s1", UserID: "u1"}
	svc := NewNotificationService(newMockNotificationRepo(), students, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestNotificationServicePublishAsync(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, newMockStudentRepo(), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.Publish(context.Background(), markNotification("n1", "s1", 10))

	require.Eventually(t, func() bool {
		return repo.createdCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotificationServicePublishInlineWhenStopped(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewNotificationService(repo, newMockStudentRepo(), nil, zap.NewNop())

	// Queue never started: the write happens synchronously.
	svc.Publish(context.Background(), markNotification("n1", "s1", 10))
	assert.Equal(t, 1, repo.createdCount())
}
