package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateStatus(ctx context.Context, id string, status models.LifecycleStatus) error
}

type profileStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type profileTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
}

type profileSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// ProfileService completes role-specific onboarding details.
type ProfileService struct {
	users     profileUserRepository
	students  profileStudentRepository
	teachers  profileTeacherRepository
	subjects  profileSubjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(users profileUserRepository, students profileStudentRepository, teachers profileTeacherRepository, subjects profileSubjectRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{users: users, students: students, teachers: teachers, subjects: subjects, validator: validate, logger: logger}
}

// CompleteStudent records the student's details and activates the account.
// Submitting twice never creates a duplicate: the second call is rejected
// with a conflict that clients treat as a soft redirect to login.
func (s *ProfileService) CompleteStudent(ctx context.Context, userID string, req models.StudentProfileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student profile payload")
	}

	user, err := s.loadUser(ctx, userID, models.RoleStudent)
	if err != nil {
		return err
	}

	if _, err := s.students.FindByUserID(ctx, userID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "Student profile already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing profile")
	}

	student := &models.Student{
		UserID:     user.ID,
		StudentNo:  req.StudentNo,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		FatherName: req.FatherName,
		GovNumber:  req.GovNumber,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student profile")
	}

	if err := s.users.UpdateStatus(ctx, user.ID, models.StatusActive); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate account")
	}

	s.logger.Info("student profile completed", zap.String("user_id", user.ID), zap.String("student_id", student.ID))
	return nil
}

// CompleteTeacher records the teacher's details, including the subject they
// teach, and activates the account. Same idempotency contract as students.
func (s *ProfileService) CompleteTeacher(ctx context.Context, userID string, req models.TeacherProfileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher profile payload")
	}

	user, err := s.loadUser(ctx, userID, models.RoleTeacher)
	if err != nil {
		return err
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if _, err := s.teachers.FindByUserID(ctx, userID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "Teacher profile already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing profile")
	}

	teacher := &models.Teacher{
		UserID:     user.ID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		FatherName: req.FatherName,
		GovNumber:  req.GovNumber,
		SubjectID:  sql.NullString{String: req.SubjectID, Valid: true},
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher profile")
	}

	if err := s.users.UpdateStatus(ctx, user.ID, models.StatusActive); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate account")
	}

	s.logger.Info("teacher profile completed", zap.String("user_id", user.ID), zap.String("teacher_id", teacher.ID))
	return nil
}

// StudentProfile returns the caller's student record.
func (s *ProfileService) StudentProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	user, err := s.loadUser(ctx, userID, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	return &models.StudentProfile{
		ID:         student.ID,
		UserID:     student.UserID,
		Email:      user.Email,
		StudentNo:  student.StudentNo,
		FirstName:  student.FirstName,
		LastName:   student.LastName,
		FatherName: student.FatherName,
		GovNumber:  student.GovNumber,
	}, nil
}

// TeacherProfile returns the caller's teacher record with the subject name
// resolved.
func (s *ProfileService) TeacherProfile(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	user, err := s.loadUser(ctx, userID, models.RoleTeacher)
	if err != nil {
		return nil, err
	}

	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}

	profile := &models.TeacherProfile{
		ID:         teacher.ID,
		UserID:     teacher.UserID,
		Email:      user.Email,
		FirstName:  teacher.FirstName,
		LastName:   teacher.LastName,
		FatherName: teacher.FatherName,
		GovNumber:  teacher.GovNumber,
	}
	if teacher.SubjectID.Valid {
		profile.SubjectID = teacher.SubjectID.String
		if subject, err := s.subjects.FindByID(ctx, teacher.SubjectID.String); err == nil {
			profile.SubjectName = subject.Name
		}
	}
	return profile, nil
}

func (s *ProfileService) loadUser(ctx context.Context, userID string, want models.UserRole) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != want {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "wrong role for this operation")
	}
	return user, nil
}
