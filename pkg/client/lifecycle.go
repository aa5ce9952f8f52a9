package client

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

// State is the lifecycle position of the current session.
type State string

const (
	StateAnonymous       State = "anonymous"
	StateIncomplete      State = "incomplete"
	StateAwaitingDetails State = "awaiting_details"
	StateActive          State = "active"
)

func stateFromStatus(status models.LifecycleStatus) State {
	switch status {
	case models.StatusIncomplete:
		return StateIncomplete
	case models.StatusAwaitingDetails:
		return StateAwaitingDetails
	case models.StatusActive:
		return StateActive
	default:
		return StateAnonymous
	}
}

// ProfileOutcome reports how a profile completion ended. AlreadyExisted marks
// the soft conflict path: the profile was completed earlier and the caller
// should head back to login, not treat it as a failure.
type ProfileOutcome struct {
	AlreadyExisted bool
}

// Lifecycle owns the onboarding state machine. State only moves forward
// through incomplete, awaiting_details, active; logout is the only reset.
type Lifecycle struct {
	client *Client
	logger *zap.Logger
}

// NewLifecycle builds a lifecycle controller on top of a client.
func NewLifecycle(c *Client, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{client: c, logger: logger}
}

// State derives the current lifecycle state from the stored session.
func (l *Lifecycle) State() State {
	identity := l.client.currentIdentity()
	if identity == nil {
		return StateAnonymous
	}
	return stateFromStatus(identity.Status)
}

// Identity returns the stored identity projection, or nil when anonymous.
func (l *Lifecycle) Identity() *models.UserInfo {
	return l.client.currentIdentity()
}

// Login exchanges credentials for an access token. The identity, role and
// lifecycle status are decoded from the token itself without a second round
// trip; the token is self-describing.
func (l *Lifecycle) Login(ctx context.Context, email, password string) (State, error) {
	var res models.LoginResponse
	err := l.client.post(ctx, "/auth/login", models.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return StateAnonymous, err
	}

	identity, err := decodeIdentity(res.AccessToken)
	if err != nil {
		return StateAnonymous, err
	}

	if err := l.client.store.Save(&Session{Token: res.AccessToken, Identity: *identity}); err != nil {
		return StateAnonymous, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist session")
	}

	l.logger.Info("logged in", zap.String("user_id", identity.ID), zap.String("status", string(identity.Status)))
	return stateFromStatus(identity.Status), nil
}

// Register creates a new pending account. The caller still has to log in.
func (l *Lifecycle) Register(ctx context.Context, email, password string) error {
	return l.client.post(ctx, "/auth/register", models.RegisterRequest{Email: email, Password: password}, nil)
}

// AssignRole redeems a one-time onboarding code. Valid only from the
// incomplete state. Students and teachers move on to awaiting_details with a
// re-issued token; admins are dropped back to anonymous and must log in again.
func (l *Lifecycle) AssignRole(ctx context.Context, code string) (State, error) {
	if l.State() != StateIncomplete {
		return l.State(), appErrors.Clone(appErrors.ErrConflict, "role already assigned")
	}

	var res models.AssignRoleResponse
	if err := l.client.post(ctx, "/roles/assign-role", models.AssignRoleRequest{Code: code}, &res); err != nil {
		return StateIncomplete, err
	}

	if res.Role == models.RoleAdmin || res.AccessToken == "" {
		if err := l.client.store.Clear(); err != nil {
			l.logger.Warn("failed to clear session", zap.Error(err))
		}
		return StateAnonymous, nil
	}

	identity, err := decodeIdentity(res.AccessToken)
	if err != nil {
		return StateIncomplete, err
	}
	if err := l.client.store.Save(&Session{Token: res.AccessToken, Identity: *identity}); err != nil {
		return StateIncomplete, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist session")
	}

	return stateFromStatus(identity.Status), nil
}

// CompleteStudentProfile submits the student's onboarding details. Valid only
// from awaiting_details. A repeat submission comes back as AlreadyExisted and
// is not an error; either way the session is cleared and the caller logs in
// again with full access.
func (l *Lifecycle) CompleteStudentProfile(ctx context.Context, details models.StudentProfileRequest) (ProfileOutcome, error) {
	return l.completeProfile(ctx, "/profiles/complete-student-details", details)
}

// CompleteTeacherProfile submits the teacher's onboarding details, including
// the taught subject. Same contract as CompleteStudentProfile.
func (l *Lifecycle) CompleteTeacherProfile(ctx context.Context, details models.TeacherProfileRequest) (ProfileOutcome, error) {
	return l.completeProfile(ctx, "/profiles/complete-teacher-details", details)
}

func (l *Lifecycle) completeProfile(ctx context.Context, path string, details interface{}) (ProfileOutcome, error) {
	if l.State() != StateAwaitingDetails {
		return ProfileOutcome{}, appErrors.Clone(appErrors.ErrConflict, "profile completion is not pending")
	}

	err := l.client.post(ctx, path, details, nil)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			l.clearLocal()
			return ProfileOutcome{AlreadyExisted: true}, nil
		}
		return ProfileOutcome{}, err
	}

	l.clearLocal()
	return ProfileOutcome{}, nil
}

// Logout revokes the session server-side on a best-effort basis and always
// clears local state.
func (l *Lifecycle) Logout(ctx context.Context) {
	if err := l.client.post(ctx, "/auth/logout", nil, nil); err != nil {
		l.logger.Warn("remote logout failed", zap.Error(err))
	}
	l.clearLocal()
}

// Verify re-validates the stored token against the server and refreshes the
// identity projection. Decoded token fields are a hint, not a source of
// truth; this is the authoritative check.
func (l *Lifecycle) Verify(ctx context.Context) (State, error) {
	if l.client.currentIdentity() == nil {
		return StateAnonymous, nil
	}

	var info models.UserInfo
	if err := l.client.get(ctx, "/auth/verify-token", &info); err != nil {
		if appErrors.Is(err, appErrors.ErrUnauthorized) {
			l.clearLocal()
			return StateAnonymous, nil
		}
		return l.State(), err
	}

	session, err := l.client.store.Load()
	if err != nil || session == nil {
		return StateAnonymous, nil
	}
	session.Identity = info
	if err := l.client.store.Save(session); err != nil {
		l.logger.Warn("failed to refresh session", zap.Error(err))
	}
	return stateFromStatus(info.Status), nil
}

func (l *Lifecycle) clearLocal() {
	if err := l.client.store.Clear(); err != nil {
		l.logger.Warn("failed to clear session", zap.Error(err))
	}
}

// decodeIdentity extracts the identity projection from a token without
// verifying the signature. Verification happens server-side; Verify covers
// re-validation.
func decodeIdentity(token string) (*models.UserInfo, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, &models.JWTClaims{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "malformed access token")
	}
	claims, ok := parsed.Claims.(*models.JWTClaims)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected token claims")
	}
	return &models.UserInfo{
		ID:     claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Status: claims.Status,
	}, nil
}
