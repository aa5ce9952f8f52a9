package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type mockUserRepo struct {
	users         map[string]*models.User
	created       *models.User
	updatedStatus models.LifecycleStatus
	updatedRole   models.UserRole
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "generated"
	}
	m.created = user
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdateStatus(ctx context.Context, id string, status models.LifecycleStatus) error {
	m.updatedStatus = status
	if u, ok := m.users[id]; ok {
		u.Status = status
	}
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole, status models.LifecycleStatus) error {
	m.updatedRole = role
	m.updatedStatus = status
	if u, ok := m.users[id]; ok {
		u.Role = role
		u.Status = status
	}
	return nil
}

type mockDenylist struct {
	revoked map[string]bool
}

func newMockDenylist() *mockDenylist {
	return &mockDenylist{revoked: make(map[string]bool)}
}

func (m *mockDenylist) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.revoked[tokenID] = true
	return nil
}

func (m *mockDenylist) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	return m.revoked[tokenID]
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "secret", Expiration: time.Hour, Issuer: "test"}
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockUserRepo(&models.User{
		ID:           "u1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password"),
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
	})
	svc := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	assert.Equal(t, models.StatusActive, res.User.Status)

	claims, err := svc.ValidateToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, models.StatusActive, claims.Status)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockUserRepo(&models.User{
		ID:           "u1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password"),
	})
	svc := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginActivatesAdmin(t *testing.T) {
	repo := newMockUserRepo(&models.User{
		ID:           "a1",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "password"),
		Role:         models.RoleAdmin,
		Status:       models.StatusAwaitingDetails,
	})
	svc := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, res.User.Status)
	assert.Equal(t, models.StatusActive, repo.updatedStatus)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Register(context.Background(), models.RegisterRequest{Email: "new@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.Email)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.RolePending, repo.created.Role)
	assert.Equal(t, models.StatusIncomplete, repo.created.Status)
	assert.NotEqual(t, "secret1", repo.created.PasswordHash)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: "u1", Email: "taken@example.com"})
	svc := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "taken@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.com", Role: models.RoleStudent, Status: models.StatusActive}
	denylist := newMockDenylist()
	svc := NewAuthService(newMockUserRepo(user), denylist, validator.New(), zap.NewNop(), testAuthConfig())

	token, _, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))

	_, err = svc.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceVerifyReflectsDatabase(t *testing.T) {
	user := &models.User{ID: "u1", Email: "user@example.com", Role: models.RolePending, Status: models.StatusIncomplete}
	repo := newMockUserRepo(user)
	svc := NewAuthService(repo, newMockDenylist(), validator.New(), zap.NewNop(), testAuthConfig())

	token, _, err := svc.IssueToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	// The database moved on but the token still carries the old status.
	user.Role = models.RoleTeacher
	user.Status = models.StatusAwaitingDetails

	info, err := svc.Verify(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, info.Role)
	assert.Equal(t, models.StatusAwaitingDetails, info.Status)
}
