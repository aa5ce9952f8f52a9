package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type mockStudentRepo struct {
	byUserID map[string]*models.Student
	created  *models.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{byUserID: make(map[string]*models.Student)}
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	if s, ok := m.byUserID[userID]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "s-" + student.UserID
	}
	m.created = student
	m.byUserID[student.UserID] = student
	return nil
}

type mockTeacherProfileRepo struct {
	byUserID map[string]*models.Teacher
	created  *models.Teacher
}

func newMockTeacherProfileRepo() *mockTeacherProfileRepo {
	return &mockTeacherProfileRepo{byUserID: make(map[string]*models.Teacher)}
}

func (m *mockTeacherProfileRepo) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if tc, ok := m.byUserID[userID]; ok {
		return tc, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherProfileRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = "t-" + teacher.UserID
	}
	m.created = teacher
	m.byUserID[teacher.UserID] = teacher
	return nil
}

type mockSubjectFinder struct {
	subjects map[string]*models.Subject
}

func newMockSubjectFinder(subjects ...*models.Subject) *mockSubjectFinder {
	m := &mockSubjectFinder{subjects: make(map[string]*models.Subject)}
	for _, s := range subjects {
		m.subjects[s.ID] = s
	}
	return m
}

func (m *mockSubjectFinder) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func studentProfilePayload() models.StudentProfileRequest {
	return models.StudentProfileRequest{
		StudentNo:  "1001",
		FirstName:  "Ana",
		LastName:   "Pop",
		FatherName: "Ion",
		GovNumber:  "1990101223344",
	}
}

func TestProfileServiceCompleteStudent(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleStudent, Status: models.StatusAwaitingDetails})
	students := newMockStudentRepo()
	svc := NewProfileService(users, students, newMockTeacherProfileRepo(), newMockSubjectFinder(), validator.New(), zap.NewNop())

	err := svc.CompleteStudent(context.Background(), "u1", studentProfilePayload())
	require.NoError(t, err)
	require.NotNil(t, students.created)
	assert.Equal(t, "u1", students.created.UserID)
	assert.Equal(t, models.StatusActive, users.updatedStatus)
}

func TestProfileServiceCompleteStudentTwice(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleStudent, Status: models.StatusAwaitingDetails})
	students := newMockStudentRepo()
	svc := NewProfileService(users, students, newMockTeacherProfileRepo(), newMockSubjectFinder(), validator.New(), zap.NewNop())

	require.NoError(t, svc.CompleteStudent(context.Background(), "u1", studentProfilePayload()))
	created := students.created

	err := svc.CompleteStudent(context.Background(), "u1", studentProfilePayload())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Student profile already exists", appErrors.FromError(err).Message)
	assert.Same(t, created, students.created)
}

func TestProfileServiceCompleteStudentWrongRole(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleTeacher, Status: models.StatusAwaitingDetails})
	svc := NewProfileService(users, newMockStudentRepo(), newMockTeacherProfileRepo(), newMockSubjectFinder(), validator.New(), zap.NewNop())

	err := svc.CompleteStudent(context.Background(), "u1", studentProfilePayload())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestProfileServiceCompleteTeacher(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: "u2", Email: "u2@example.com", Role: models.RoleTeacher, Status: models.StatusAwaitingDetails})
	teachers := newMockTeacherProfileRepo()
	subjects := newMockSubjectFinder(&models.Subject{ID: "math", Name: "Mathematics"})
	svc := NewProfileService(users, newMockStudentRepo(), teachers, subjects, validator.New(), zap.NewNop())

	err := svc.CompleteTeacher(context.Background(), "u2", models.TeacherProfileRequest{
		FirstName:  "Dan",
		LastName:   "Ionescu",
		FatherName: "Mihai",
		GovNumber:  "1880202334455",
		SubjectID:  "math",
	})
	require.NoError(t, err)
	require.NotNil(t, teachers.created)
	assert.Equal(t, "math", teachers.created.SubjectID.String)
	assert.Equal(t, models.StatusActive, users.updatedStatus)
}

func TestProfileServiceCompleteTeacherUnknownSubject(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: "u2", Email: "u2@example.com", Role: models.RoleTeacher, Status: models.StatusAwaitingDetails})
	svc := NewProfileService(users, newMockStudentRepo(), newMockTeacherProfileRepo(), newMockSubjectFinder(), validator.New(), zap.NewNop())

	err := svc.CompleteTeacher(context.Background(), "u2", models.TeacherProfileRequest{
		FirstName:  "Dan",
		LastName:   "Ionescu",
		FatherName: "Mihai",
		GovNumber:  "1880202334455",
		SubjectID:  "missing",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
