package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktrack/marktrack-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func studentSession(t *testing.T, store SessionStore) {
	t.Helper()
	seedSession(t, store, "tok", models.UserInfo{ID: "u1", Role: models.RoleStudent, Status: models.StatusActive})
}

func TestNotificationsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications", r.URL.Path)
		writeData(w, http.StatusOK, feedPayload{
			Notifications: []models.Notification{
				{ID: "n1", Kind: models.NotificationMark, SubjectName: "Mathematics", Value: floatPtr(9)},
				{ID: "n2", Kind: models.NotificationAbsence, SubjectName: "History", IsMotivated: boolPtr(false)},
			},
			UnreadCount: 2,
		})
	}))
	defer srv.Close()

	store := NewMemoryStore()
	studentSession(t, store)
	agg := NewNotifications(New(srv.URL, store))

	items, err := agg.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, agg.UnreadCount())
}

func TestNotificationsFetchSkipsNonStudents(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	store := NewMemoryStore()
	seedSession(t, store, "tok", models.UserInfo{ID: "u2", Role: models.RoleTeacher, Status: models.StatusActive})
	agg := NewNotifications(New(srv.URL, store))

	items, err := agg.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, agg.UnreadCount())
	assert.Zero(t, hits)
}

func TestNotificationsFetchEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, feedPayload{})
	}))
	defer srv.Close()

	store := NewMemoryStore()
	studentSession(t, store)
	agg := NewNotifications(New(srv.URL, store))

	items, err := agg.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNotificationsDeleteRefetches(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			writeData(w, http.StatusOK, feedPayload{
				Notifications: []models.Notification{
					{ID: "n2", Kind: models.NotificationAbsence, SubjectName: "History"},
				},
				UnreadCount: 1,
			})
		}
	}))
	defer srv.Close()

	store := NewMemoryStore()
	studentSession(t, store)
	agg := NewNotifications(New(srv.URL, store))

	items, err := agg.Delete(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "/notifications/n1", deleted)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, agg.UnreadCount())
}

func TestFormatNotification(t *testing.T) {
	tests := []struct {
		name string
		n    models.Notification
		want string
	}{
		{"mark with value", models.Notification{Kind: models.NotificationMark, SubjectName: "Mathematics", Value: floatPtr(9.5)}, "New grade: 9.5 in Mathematics"},
		{"mark without value", models.Notification{Kind: models.NotificationMark, SubjectName: "Mathematics"}, "New absence in Mathematics"},
		{"motivated absence", models.Notification{Kind: models.NotificationAbsence, SubjectName: "History", IsMotivated: boolPtr(true)}, "Motivated absence in History"},
		{"unmotivated absence", models.Notification{Kind: models.NotificationAbsence, SubjectName: "History", IsMotivated: boolPtr(false)}, "Unmotivated absence in History"},
		{"absence without flag", models.Notification{Kind: models.NotificationAbsence, SubjectName: "History"}, "Unmotivated absence in History"},
		{"unknown kind", models.Notification{Kind: "other", SubjectName: "Biology"}, "Update in Biology"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNotification(tt.n))
		})
	}
}
