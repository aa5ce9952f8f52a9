package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/marktrack/marktrack-api/internal/models"
)

// Dashboard aggregates the admin's overview lists. All four reads run
// concurrently and must all succeed; a single failure fails the whole join so
// the view never renders partially.
type Dashboard struct {
	Classes  []models.Class
	Teachers []models.Teacher
	Subjects []models.Subject
	Students []models.Student
}

// FetchDashboard fans out the four admin list reads and joins them.
func (c *Client) FetchDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(ctx, "/admin/classes", &d.Classes)
	})
	g.Go(func() error {
		return c.get(ctx, "/admin/teachers", &d.Teachers)
	})
	g.Go(func() error {
		return c.get(ctx, "/admin/subjects", &d.Subjects)
	})
	g.Go(func() error {
		return c.get(ctx, "/admin/students", &d.Students)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
