package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/marktrack/marktrack-api/internal/models"
)

// Notifications aggregates the student's notification feed. The unread badge
// counts everything fetched: there is no per-item read flag, only deletion.
type Notifications struct {
	client *Client

	mu   sync.RWMutex
	last []models.Notification
}

// NewNotifications builds an aggregator on top of a client.
func NewNotifications(c *Client) *Notifications {
	return &Notifications{client: c}
}

type feedPayload struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// Fetch retrieves the feed. For non-students it returns an empty list without
// contacting the server.
func (n *Notifications) Fetch(ctx context.Context) ([]models.Notification, error) {
	identity := n.client.currentIdentity()
	if identity == nil || identity.Role != models.RoleStudent {
		n.setLast(nil)
		return []models.Notification{}, nil
	}

	var feed feedPayload
	if err := n.client.get(ctx, "/notifications", &feed); err != nil {
		return nil, err
	}
	if feed.Notifications == nil {
		feed.Notifications = []models.Notification{}
	}

	n.setLast(feed.Notifications)
	return feed.Notifications, nil
}

// UnreadCount is the size of the last fetched feed.
func (n *Notifications) UnreadCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.last)
}

// Delete removes a notification remotely, then refetches the whole feed to
// reconcile. A failed delete leaves the list unchanged.
func (n *Notifications) Delete(ctx context.Context, id string) ([]models.Notification, error) {
	if err := n.client.delete(ctx, "/notifications/"+id); err != nil {
		return nil, err
	}
	return n.Fetch(ctx)
}

func (n *Notifications) setLast(items []models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = items
}

// FormatNotification renders the one-line display text for a notification.
// Mark notifications missing a value render as plain absences; that matches
// how older records without the value field are displayed.
func FormatNotification(n models.Notification) string {
	switch n.Kind {
	case models.NotificationMark:
		if n.Value == nil {
			return fmt.Sprintf("New absence in %s", n.SubjectName)
		}
		return fmt.Sprintf("New grade: %g in %s", *n.Value, n.SubjectName)
	case models.NotificationAbsence:
		label := "Unmotivated"
		if n.IsMotivated != nil && *n.IsMotivated {
			label = "Motivated"
		}
		return fmt.Sprintf("%s absence in %s", label, n.SubjectName)
	default:
		return fmt.Sprintf("Update in %s", n.SubjectName)
	}
}
