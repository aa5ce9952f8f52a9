package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	"github.com/marktrack/marktrack-api/pkg/config"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type roleUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole, status models.LifecycleStatus) error
}

type codeConsumer interface {
	ConsumeCode(ctx context.Context, code string, ttl time.Duration) (bool, error)
	ReleaseCode(ctx context.Context, code string)
}

// RoleService redeems one-time onboarding codes and grants roles.
type RoleService struct {
	repo      roleUserRepository
	codes     codeConsumer
	auth      *AuthService
	validator *validator.Validate
	logger    *zap.Logger
	config    config.OnboardingConfig
}

// NewRoleService constructs a RoleService instance.
func NewRoleService(repo roleUserRepository, codes codeConsumer, auth *AuthService, validate *validator.Validate, logger *zap.Logger, cfg config.OnboardingConfig) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, codes: codes, auth: auth, validator: validate, logger: logger, config: cfg}
}

// AssignRole redeems a code for the calling pending account. Students and
// teachers receive a fresh token reflecting the new role; admins receive no
// token and must authenticate again.
func (s *RoleService) AssignRole(ctx context.Context, userID string, req models.AssignRoleRequest) (*models.AssignRoleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assign role payload")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Role != models.RolePending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already has a role")
	}

	role, ok := s.resolveCode(req.Code)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCode, "invalid or expired onboarding code")
	}

	consumed, err := s.codes.ConsumeCode(ctx, req.Code, s.config.CodeTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume onboarding code")
	}
	if !consumed {
		return nil, appErrors.Clone(appErrors.ErrInvalidCode, "invalid or expired onboarding code")
	}

	if err := s.repo.UpdateRole(ctx, user.ID, role, models.StatusAwaitingDetails); err != nil {
		s.codes.ReleaseCode(ctx, req.Code)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user role")
	}

	s.logger.Info("role assigned", zap.String("user_id", user.ID), zap.String("role", string(role)))

	res := &models.AssignRoleResponse{Role: role}
	if role != models.RoleAdmin {
		user.Role = role
		user.Status = models.StatusAwaitingDetails
		token, _, err := s.auth.IssueToken(user)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue token")
		}
		res.AccessToken = token
	}
	return res, nil
}

// resolveCode maps a raw onboarding code to the role it grants.
func (s *RoleService) resolveCode(code string) (models.UserRole, bool) {
	switch {
	case s.config.AdminCode != "" && code == s.config.AdminCode:
		return models.RoleAdmin, true
	case s.config.TeacherCode != "" && code == s.config.TeacherCode:
		return models.RoleTeacher, true
	case s.config.StudentCodePrefix != "" && strings.HasPrefix(code, s.config.StudentCodePrefix) && len(code) > len(s.config.StudentCodePrefix):
		return models.RoleStudent, true
	default:
		return "", false
	}
}
