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

// StudentRepository provides database access for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID returns the student profile owned by an account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_no, first_name, last_name, father_name, gov_number, created_at FROM students WHERE user_id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user id: %w", err)
	}
	return &student, nil
}

// FindByID returns a student profile by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_no, first_name, last_name, father_name, gov_number, created_at FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// Create inserts a new student profile.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO students (id, user_id, student_no, first_name, last_name, father_name, gov_number, created_at) VALUES (:id, :user_id, :student_no, :first_name, :last_name, :father_name, :gov_number, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// List returns all student profiles ordered by last name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, user_id, student_no, first_name, last_name, father_name, gov_number, created_at FROM students ORDER BY last_name, first_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// SubjectsForStudent returns the subjects taught in the student's class with
// the assigned teacher's display name.
func (r *StudentRepository) SubjectsForStudent(ctx context.Context, studentID string) ([]models.StudentSubject, error) {
	const query = `SELECT DISTINCT s.id, s.name,
        COALESCE(NULLIF(TRIM(t.first_name || ' ' || t.last_name), ''), 'Not assigned') AS teacher_name
        FROM subjects s
        JOIN class_subjects cs ON cs.subject_id = s.id
        JOIN class_students cls ON cls.class_id = cs.class_id
        LEFT JOIN teachers t ON t.id = cs.teacher_id
        WHERE cls.student_id = $1
        ORDER BY s.name`
	var subjects []models.StudentSubject
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, fmt.Errorf("list student subjects: %w", err)
	}
	return subjects, nil
}

// ClassForStudent returns the class the student belongs to.
func (r *StudentRepository) ClassForStudent(ctx context.Context, studentID string) (*models.Class, error) {
	const query = `SELECT c.id, c.name, c.created_at FROM classes c
        JOIN class_students cs ON cs.class_id = c.id
        WHERE cs.student_id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student class: %w", err)
	}
	return &class, nil
}
