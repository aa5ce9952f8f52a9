package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/marktrack/marktrack-api/internal/models"
)

// ClassRepository provides database access for classes and their membership.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns all classes ordered by name.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, created_at FROM classes ORDER BY name`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, created_at FROM classes WHERE id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO classes (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM classes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// StudentIDsInClass returns the ids of students assigned to a class.
func (r *ClassRepository) StudentIDsInClass(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT student_id FROM class_students WHERE class_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, fmt.Errorf("list class student ids: %w", err)
	}
	return ids, nil
}

// StudentsInClass returns the full roster of a class.
func (r *ClassRepository) StudentsInClass(ctx context.Context, classID string) ([]models.Student, error) {
	const query = `SELECT s.id, s.user_id, s.student_no, s.first_name, s.last_name, s.father_name, s.gov_number, s.created_at
        FROM students s
        JOIN class_students cs ON cs.student_id = s.id
        WHERE cs.class_id = $1
        ORDER BY s.last_name, s.first_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// HasStudent reports whether a student is already assigned to the class.
func (r *ClassRepository) HasStudent(ctx context.Context, classID, studentID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM class_students WHERE class_id = $1 AND student_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, studentID); err != nil {
		return false, fmt.Errorf("check class membership: %w", err)
	}
	return count > 0, nil
}

// ClassIDForStudent returns the id of the class a student belongs to, if any.
func (r *ClassRepository) ClassIDForStudent(ctx context.Context, studentID string) (string, error) {
	const query = `SELECT class_id FROM class_students WHERE student_id = $1 LIMIT 1`
	var classID string
	if err := r.db.GetContext(ctx, &classID, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("find class for student: %w", err)
	}
	return classID, nil
}

// AddStudent assigns a student to a class.
func (r *ClassRepository) AddStudent(ctx context.Context, classID, studentID string) error {
	const query = `INSERT INTO class_students (class_id, student_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, classID, studentID); err != nil {
		return fmt.Errorf("add student to class: %w", err)
	}
	return nil
}

// RemoveStudent removes a student from a class.
func (r *ClassRepository) RemoveStudent(ctx context.Context, classID, studentID string) error {
	const query = `DELETE FROM class_students WHERE class_id = $1 AND student_id = $2`
	res, err := r.db.ExecContext(ctx, query, classID, studentID)
	if err != nil {
		return fmt.Errorf("remove student from class: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasSubject reports whether a subject is already bound to the class.
func (r *ClassRepository) HasSubject(ctx context.Context, classID, subjectID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM class_subjects WHERE class_id = $1 AND subject_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, subjectID); err != nil {
		return false, fmt.Errorf("check class subject: %w", err)
	}
	return count > 0, nil
}

// TeachesSubjectInClass reports whether the teacher delivers the subject in
// the given class.
func (r *ClassRepository) TeachesSubjectInClass(ctx context.Context, classID, teacherID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM class_subjects WHERE class_id = $1 AND teacher_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, teacherID); err != nil {
		return false, fmt.Errorf("check teacher class binding: %w", err)
	}
	return count > 0, nil
}

// AddSubject binds a subject and its teacher to a class.
func (r *ClassRepository) AddSubject(ctx context.Context, binding models.ClassSubject) error {
	const query = `INSERT INTO class_subjects (class_id, subject_id, teacher_id) VALUES (:class_id, :subject_id, :teacher_id)`
	if _, err := r.db.NamedExecContext(ctx, query, binding); err != nil {
		return fmt.Errorf("add subject to class: %w", err)
	}
	return nil
}

// RemoveSubject unbinds a subject from a class.
func (r *ClassRepository) RemoveSubject(ctx context.Context, classID, subjectID string) error {
	const query = `DELETE FROM class_subjects WHERE class_id = $1 AND subject_id = $2`
	res, err := r.db.ExecContext(ctx, query, classID, subjectID)
	if err != nil {
		return fmt.Errorf("remove subject from class: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
