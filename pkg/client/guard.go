package client

import "github.com/marktrack/marktrack-api/internal/models"

// Route names understood by the guard.
const (
	RouteLogin           = "/login"
	RouteRegister        = "/register"
	RouteEnterCode       = "/enterCode"
	RouteCompleteDetails = "/completeDetails"
	RouteDashboard       = "/dashboard"
	RouteNotifications   = "/notifications"
	RouteProfile         = "/profile"
)

// Decision is the guard's verdict on a navigation attempt.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(route string) Decision {
	return Decision{RedirectTo: route}
}

// Guard maps (lifecycle state, role, requested route) to allow or redirect.
// Pure and deterministic; evaluate it on every navigation attempt.
func Guard(state State, role models.UserRole, route string) Decision {
	switch state {
	case StateAnonymous:
		if route == RouteLogin || route == RouteRegister {
			return allow()
		}
		return redirect(RouteLogin)

	case StateIncomplete:
		if route == RouteEnterCode {
			return allow()
		}
		return redirect(RouteEnterCode)

	case StateAwaitingDetails:
		if route == RouteCompleteDetails {
			return allow()
		}
		return redirect(RouteCompleteDetails)

	case StateActive:
		switch route {
		case RouteLogin, RouteRegister, RouteEnterCode, RouteCompleteDetails:
			return redirect(RouteDashboard)
		case RouteNotifications:
			if role != models.RoleStudent {
				return redirect(RouteDashboard)
			}
			return allow()
		default:
			return allow()
		}

	default:
		return redirect(RouteLogin)
	}
}
