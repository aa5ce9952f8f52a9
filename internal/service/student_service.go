package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

type studentProfileRepo interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	SubjectsForStudent(ctx context.Context, studentID string) ([]models.StudentSubject, error)
	ClassForStudent(ctx context.Context, studentID string) (*models.Class, error)
}

type studentMarkRepo interface {
	ListForStudentSubject(ctx context.Context, studentID, subjectID string) ([]models.Mark, error)
}

type studentAbsenceRepo interface {
	ListForStudentSubject(ctx context.Context, studentID, subjectID string) ([]models.Absence, error)
}

// SubjectRecord is a student's own marks and absences within one subject.
type SubjectRecord struct {
	Subject  models.StudentSubject `json:"subject"`
	Marks    []models.Mark         `json:"marks"`
	Absences []models.Absence      `json:"absences"`
}

// StudentService serves a student's read-only view of their record.
type StudentService struct {
	students studentProfileRepo
	marks    studentMarkRepo
	absences studentAbsenceRepo
	logger   *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(students studentProfileRepo, marks studentMarkRepo, absences studentAbsenceRepo, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, marks: marks, absences: absences, logger: logger}
}

// Subjects lists the subjects taught in the caller's class with their teachers.
func (s *StudentService) Subjects(ctx context.Context, userID string) ([]models.StudentSubject, error) {
	student, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.students.SubjectsForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.StudentSubject{}
	}
	return subjects, nil
}

// Class returns the caller's class. Students not yet assigned to a class get
// a not found error.
func (s *StudentService) Class(ctx context.Context, userID string) (*models.Class, error) {
	student, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	class, err := s.students.ClassForStudent(ctx, student.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not assigned to a class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// SubjectRecord returns the caller's marks and absences in one subject.
func (s *StudentService) SubjectRecord(ctx context.Context, userID, subjectID string) (*SubjectRecord, error) {
	student, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.students.SubjectsForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	var subject *models.StudentSubject
	for i := range subjects {
		if subjects[i].ID == subjectID {
			subject = &subjects[i]
			break
		}
	}
	if subject == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject is not taught in the student's class")
	}

	marks, err := s.marks.ListForStudentSubject(ctx, student.ID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	absences, err := s.absences.ListForStudentSubject(ctx, student.ID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}

	if marks == nil {
		marks = []models.Mark{}
	}
	if absences == nil {
		absences = []models.Absence{}
	}
	return &SubjectRecord{Subject: *subject, Marks: marks, Absences: absences}, nil
}

func (s *StudentService) resolve(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
