package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
	"github.com/marktrack/marktrack-api/pkg/export"
)

type teacherProfileRepo interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	ClassesForTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
}

type teacherClassRepo interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	StudentsInClass(ctx context.Context, classID string) ([]models.Student, error)
	TeachesSubjectInClass(ctx context.Context, classID, teacherID string) (bool, error)
	ClassIDForStudent(ctx context.Context, studentID string) (string, error)
}

type teacherMarkRepo interface {
	Create(ctx context.Context, mark *models.Mark) error
	FindByID(ctx context.Context, id string) (*models.Mark, error)
	ListForStudentSubject(ctx context.Context, studentID, subjectID string) ([]models.Mark, error)
	Update(ctx context.Context, mark *models.Mark) error
	Delete(ctx context.Context, id string) error
}

type teacherAbsenceRepo interface {
	Create(ctx context.Context, absence *models.Absence) error
	FindByID(ctx context.Context, id string) (*models.Absence, error)
	ListForStudentSubject(ctx context.Context, studentID, subjectID string) ([]models.Absence, error)
	Update(ctx context.Context, absence *models.Absence) error
	Delete(ctx context.Context, id string) error
}

type teacherSubjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// notifier receives grading events for asynchronous fan-out to students.
type notifier interface {
	Publish(ctx context.Context, n models.Notification)
}

// TeacherService implements the grading workflows: class rosters, marks,
// absences and class report exports.
type TeacherService struct {
	teachers  teacherProfileRepo
	classes   teacherClassRepo
	marks     teacherMarkRepo
	absences  teacherAbsenceRepo
	subjects  teacherSubjectRepo
	notifier  notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService instance.
func NewTeacherService(teachers teacherProfileRepo, classes teacherClassRepo, marks teacherMarkRepo, absences teacherAbsenceRepo, subjects teacherSubjectRepo, notifier notifier, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{
		teachers:  teachers,
		classes:   classes,
		marks:     marks,
		absences:  absences,
		subjects:  subjects,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
	}
}

// Classes lists the classes where the caller delivers their subject.
func (s *TeacherService) Classes(ctx context.Context, userID string) ([]models.Class, error) {
	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}
	classes, err := s.teachers.ClassesForTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	return classes, nil
}

// Roster returns the class roster with the teacher's per-subject statistics
// for each student.
func (s *TeacherService) Roster(ctx context.Context, userID, classID string) (*models.ClassRoster, error) {
	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !teacher.SubjectID.Valid {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no subject assigned to teacher")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	if err := s.mustTeachClass(ctx, classID, teacher.ID); err != nil {
		return nil, err
	}

	students, err := s.classes.StudentsInClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	subjectID := teacher.SubjectID.String
	roster := &models.ClassRoster{Class: *class, Students: make([]models.RosterEntry, 0, len(students))}
	for _, student := range students {
		entry := models.RosterEntry{Student: student}

		marks, err := s.marks.ListForStudentSubject(ctx, student.ID, subjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
		}
		entry.Marks = marks

		absences, err := s.absences.ListForStudentSubject(ctx, student.ID, subjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
		}
		entry.Absences = absences

		if len(marks) > 0 {
			var sum float64
			for _, m := range marks {
				sum += m.Value
			}
			entry.AverageMark = sum / float64(len(marks))
		}
		entry.TotalAbsences = len(absences)
		for _, a := range absences {
			if a.IsMotivated {
				entry.MotivatedAbsences++
			}
		}

		roster.Students = append(roster.Students, entry)
	}
	return roster, nil
}

// AddMark records a grade and notifies the student.
func (s *TeacherService) AddMark(ctx context.Context, userID string, req models.CreateMarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}

	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.mustTeachSubjectToStudent(ctx, teacher, req.SubjectID, req.StudentID); err != nil {
		return nil, err
	}

	mark := &models.Mark{
		StudentID:   req.StudentID,
		TeacherID:   teacher.ID,
		SubjectID:   req.SubjectID,
		Value:       req.Value,
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.marks.Create(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mark")
	}

	s.logger.Info("mark recorded",
		zap.String("teacher_id", teacher.ID),
		zap.String("student_id", mark.StudentID),
		zap.Float64("value", mark.Value))

	value := mark.Value
	s.notifier.Publish(ctx, models.Notification{
		Kind:        models.NotificationMark,
		StudentID:   mark.StudentID,
		TeacherID:   teacher.ID,
		SubjectID:   mark.SubjectID,
		Value:       &value,
		Description: mark.Description,
		Date:        mark.Date,
	})
	return mark, nil
}

// UpdateMark edits a grade the caller previously recorded.
func (s *TeacherService) UpdateMark(ctx context.Context, userID, markID string, req models.UpdateMarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}

	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}

	mark, err := s.loadOwnedMark(ctx, teacher.ID, markID)
	if err != nil {
		return nil, err
	}

	if req.Value != nil {
		mark.Value = *req.Value
	}
	if req.Description != nil {
		mark.Description = *req.Description
	}
	if err := s.marks.Update(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mark")
	}
	return mark, nil
}

// DeleteMark removes a grade the caller previously recorded.
func (s *TeacherService) DeleteMark(ctx context.Context, userID, markID string) error {
	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.loadOwnedMark(ctx, teacher.ID, markID); err != nil {
		return err
	}
	if err := s.marks.Delete(ctx, markID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mark")
	}
	return nil
}

// AddAbsence records an absence and notifies the student.
func (s *TeacherService) AddAbsence(ctx context.Context, userID string, req models.CreateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}

	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.mustTeachSubjectToStudent(ctx, teacher, req.SubjectID, req.StudentID); err != nil {
		return nil, err
	}

	absence := &models.Absence{
		StudentID:   req.StudentID,
		TeacherID:   teacher.ID,
		SubjectID:   req.SubjectID,
		IsMotivated: req.IsMotivated,
		Description: req.Description,
		Date:        req.Date,
	}
	if err := s.absences.Create(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
	}

	s.logger.Info("absence recorded",
		zap.String("teacher_id", teacher.ID),
		zap.String("student_id", absence.StudentID),
		zap.Bool("is_motivated", absence.IsMotivated))

	motivated := absence.IsMotivated
	s.notifier.Publish(ctx, models.Notification{
		Kind:        models.NotificationAbsence,
		StudentID:   absence.StudentID,
		TeacherID:   teacher.ID,
		SubjectID:   absence.SubjectID,
		IsMotivated: &motivated,
		Description: absence.Description,
		Date:        absence.Date,
	})
	return absence, nil
}

// UpdateAbsence edits an absence the caller previously recorded.
func (s *TeacherService) UpdateAbsence(ctx context.Context, userID, absenceID string, req models.UpdateAbsenceRequest) (*models.Absence, error) {
	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return nil, err
	}

	absence, err := s.loadOwnedAbsence(ctx, teacher.ID, absenceID)
	if err != nil {
		return nil, err
	}

	if req.IsMotivated != nil {
		absence.IsMotivated = *req.IsMotivated
	}
	if req.Description != nil {
		absence.Description = *req.Description
	}
	if err := s.absences.Update(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence")
	}
	return absence, nil
}

// DeleteAbsence removes an absence the caller previously recorded.
func (s *TeacherService) DeleteAbsence(ctx context.Context, userID, absenceID string) error {
	teacher, err := s.resolveTeacher(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.loadOwnedAbsence(ctx, teacher.ID, absenceID); err != nil {
		return err
	}
	if err := s.absences.Delete(ctx, absenceID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	return nil
}

// ExportRoster renders the class roster as a downloadable report. Format is
// "csv" or "pdf".
func (s *TeacherService) ExportRoster(ctx context.Context, userID, classID, format string) ([]byte, string, error) {
	roster, err := s.Roster(ctx, userID, classID)
	if err != nil {
		return nil, "", err
	}

	subjectName := ""
	if teacher, err := s.resolveTeacher(ctx, userID); err == nil && teacher.SubjectID.Valid {
		if subject, err := s.subjects.FindByID(ctx, teacher.SubjectID.String); err == nil {
			subjectName = subject.Name
		}
	}

	table := export.Table{
		Title:   fmt.Sprintf("Class %s - %s", roster.Class.Name, subjectName),
		Headers: []string{"Student No", "Last Name", "First Name", "Average Mark", "Absences", "Motivated"},
	}
	for _, entry := range roster.Students {
		table.Rows = append(table.Rows, []string{
			entry.Student.StudentNo,
			entry.Student.LastName,
			entry.Student.FirstName,
			strconv.FormatFloat(entry.AverageMark, 'f', 2, 64),
			strconv.Itoa(entry.TotalAbsences),
			strconv.Itoa(entry.MotivatedAbsences),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		data, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, fmt.Sprintf("class-%s.csv", roster.Class.Name), nil
	case "pdf":
		data, err := export.PDF(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, fmt.Sprintf("class-%s.pdf", roster.Class.Name), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *TeacherService) resolveTeacher(ctx context.Context, userID string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

func (s *TeacherService) mustTeachClass(ctx context.Context, classID, teacherID string) error {
	teaches, err := s.classes.TeachesSubjectInClass(ctx, classID, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class assignment")
	}
	if !teaches {
		return appErrors.Clone(appErrors.ErrForbidden, "teacher is not assigned to this class")
	}
	return nil
}

// mustTeachSubjectToStudent verifies the teacher's subject matches the request
// and that the student sits in a class where the teacher delivers it.
func (s *TeacherService) mustTeachSubjectToStudent(ctx context.Context, teacher *models.Teacher, subjectID, studentID string) error {
	if !teacher.SubjectID.Valid || teacher.SubjectID.String != subjectID {
		return appErrors.Clone(appErrors.ErrForbidden, "teacher does not teach this subject")
	}

	classID, err := s.classes.ClassIDForStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student is not assigned to a class")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student class")
	}
	return s.mustTeachClass(ctx, classID, teacher.ID)
}

func (s *TeacherService) loadOwnedMark(ctx context.Context, teacherID, markID string) (*models.Mark, error) {
	mark, err := s.marks.FindByID(ctx, markID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mark not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}
	if mark.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "mark belongs to another teacher")
	}
	return mark, nil
}

func (s *TeacherService) loadOwnedAbsence(ctx context.Context, teacherID, absenceID string) (*models.Absence, error) {
	absence, err := s.absences.FindByID(ctx, absenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}
	if absence.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "absence belongs to another teacher")
	}
	return absence, nil
}
