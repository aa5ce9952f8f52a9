package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marktrack/marktrack-api/internal/models"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name  string
		state State
		role  models.UserRole
		route string
		want  Decision
	}{
		{"anonymous can open login", StateAnonymous, "", RouteLogin, Decision{Allow: true}},
		{"anonymous can open register", StateAnonymous, "", RouteRegister, Decision{Allow: true}},
		{"anonymous is sent to login", StateAnonymous, "", RouteDashboard, Decision{RedirectTo: RouteLogin}},
		{"anonymous cannot enter code", StateAnonymous, "", RouteEnterCode, Decision{RedirectTo: RouteLogin}},

		{"incomplete stays on code entry", StateIncomplete, models.RolePending, RouteEnterCode, Decision{Allow: true}},
		{"incomplete cannot reach dashboard", StateIncomplete, models.RolePending, RouteDashboard, Decision{RedirectTo: RouteEnterCode}},
		{"incomplete cannot go back to login", StateIncomplete, models.RolePending, RouteLogin, Decision{RedirectTo: RouteEnterCode}},

		{"awaiting details stays on form", StateAwaitingDetails, models.RoleStudent, RouteCompleteDetails, Decision{Allow: true}},
		{"awaiting details cannot reach dashboard", StateAwaitingDetails, models.RoleStudent, RouteDashboard, Decision{RedirectTo: RouteCompleteDetails}},
		{"awaiting details cannot re-enter code", StateAwaitingDetails, models.RoleTeacher, RouteEnterCode, Decision{RedirectTo: RouteCompleteDetails}},

		{"active student sees dashboard", StateActive, models.RoleStudent, RouteDashboard, Decision{Allow: true}},
		{"active student sees notifications", StateActive, models.RoleStudent, RouteNotifications, Decision{Allow: true}},
		{"active teacher has no notifications page", StateActive, models.RoleTeacher, RouteNotifications, Decision{RedirectTo: RouteDashboard}},
		{"active admin has no notifications page", StateActive, models.RoleAdmin, RouteNotifications, Decision{RedirectTo: RouteDashboard}},
		{"active user skips login", StateActive, models.RoleTeacher, RouteLogin, Decision{RedirectTo: RouteDashboard}},
		{"active user skips onboarding", StateActive, models.RoleStudent, RouteCompleteDetails, Decision{RedirectTo: RouteDashboard}},
		{"active user opens profile", StateActive, models.RoleAdmin, RouteProfile, Decision{Allow: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.state, tt.role, tt.route))
		})
	}
}
