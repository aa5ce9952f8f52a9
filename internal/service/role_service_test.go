package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	"github.com/marktrack/marktrack-api/pkg/config"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type mockCodes struct {
	used     map[string]bool
	released []string
}

func newMockCodes() *mockCodes {
	return &mockCodes{used: make(map[string]bool)}
}

func (m *mockCodes) ConsumeCode(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	if m.used[code] {
		return false, nil
	}
	m.used[code] = true
	return true, nil
}

func (m *mockCodes) ReleaseCode(ctx context.Context, code string) {
	delete(m.used, code)
	m.released = append(m.released, code)
}

func testOnboardingConfig() config.OnboardingConfig {
	return config.OnboardingConfig{
		TeacherCode:       "TEACH-2024",
		AdminCode:         "ADMIN-2024",
		StudentCodePrefix: "ST-",
		CodeTTL:           time.Hour,
	}
}

func newRoleService(repo *mockUserRepo, codes *mockCodes) *RoleService {
	auth := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())
	return NewRoleService(repo, codes, auth, validator.New(), zap.NewNop(), testOnboardingConfig())
}

func pendingUser(id string) *models.User {
	return &models.User{ID: id, Email: id + "@example.com", Role: models.RolePending, Status: models.StatusIncomplete}
}

func TestRoleServiceAssignTeacher(t *testing.T) {
	repo := newMockUserRepo(pendingUser("u1"))
	svc := newRoleService(repo, newMockCodes())

	res, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "TEACH-2024"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, res.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleTeacher, repo.updatedRole)
	assert.Equal(t, models.StatusAwaitingDetails, repo.updatedStatus)
}

func TestRoleServiceAssignStudentByPrefix(t *testing.T) {
	repo := newMockUserRepo(pendingUser("u1"))
	svc := newRoleService(repo, newMockCodes())

	res, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "ST-42"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.NotEmpty(t, res.AccessToken)
}

func TestRoleServiceAssignAdminWithholdsToken(t *testing.T) {
	repo := newMockUserRepo(pendingUser("u1"))
	svc := newRoleService(repo, newMockCodes())

	res, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "ADMIN-2024"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Role)
	assert.Empty(t, res.AccessToken)
	assert.Equal(t, models.StatusAwaitingDetails, repo.updatedStatus)
}

func TestRoleServiceRejectsGarbageCode(t *testing.T) {
	repo := newMockUserRepo(pendingUser("u1"))
	svc := newRoleService(repo, newMockCodes())

	_, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "WHATEVER"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCode))
	assert.Empty(t, repo.updatedRole)
}

func TestRoleServiceRejectsBarePrefix(t *testing.T) {
	repo := newMockUserRepo(pendingUser("u1"))
	svc := newRoleService(repo, newMockCodes())

	_, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "ST-"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCode))
}

func TestRoleServiceRejectsUsedCode(t *testing.T) {
	codes := newMockCodes()
	first := newMockUserRepo(pendingUser("u1"))
	svc := newRoleService(first, codes)

	_, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "TEACH-2024"})
	require.NoError(t, err)

	second := newMockUserRepo(pendingUser("u2"))
	svc2 := NewRoleService(second, codes, NewAuthService(second, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig()), validator.New(), zap.NewNop(), testOnboardingConfig())

	_, err = svc2.AssignRole(context.Background(), "u2", models.AssignRoleRequest{Code: "TEACH-2024"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCode))
	assert.Empty(t, second.updatedRole)
}

func TestRoleServiceRejectsNonPendingUser(t *testing.T) {
	user := &models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleStudent, Status: models.StatusActive}
	svc := newRoleService(newMockUserRepo(user), newMockCodes())

	_, err := svc.AssignRole(context.Background(), "u1", models.AssignRoleRequest{Code: "TEACH-2024"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}
