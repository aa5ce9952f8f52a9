package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marktrack/marktrack-api/internal/models"
)

func TestNotificationRepositoryCreateSetsDefaults(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), string(models.NotificationMark), "s1", "t1", "sub1", sqlmock.AnyArg(), nil, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	value := 9.0
	n := &models.Notification{
		Kind:      models.NotificationMark,
		StudentID: "s1",
		TeacherID: "t1",
		SubjectID: "sub1",
		Value:     &value,
	}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Date.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListForStudent(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "kind", "student_id", "teacher_id", "subject_id", "subject_name", "teacher_name", "value", "is_motivated", "description", "date", "created_at"}).
		AddRow("n1", "mark", "s1", "t1", "sub1", "Mathematics", "Dan Ionescu", 9.0, nil, "", time.Now(), time.Now()).
		AddRow("n2", "absence", "s1", "t1", "sub1", "Mathematics", "Dan Ionescu", nil, false, "", time.Now(), time.Now())
	mock.ExpectQuery("SELECT n.id, n.kind, n.student_id").
		WithArgs("s1").
		WillReturnRows(rows)

	notifications, err := repo.ListForStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, models.NotificationMark, notifications[0].Kind)
	require.NotNil(t, notifications[0].Value)
	assert.Equal(t, 9.0, *notifications[0].Value)
	assert.Equal(t, models.NotificationAbsence, notifications[1].Kind)
	require.NotNil(t, notifications[1].IsMotivated)
	assert.False(t, *notifications[1].IsMotivated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT id, kind, student_id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newUserMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE id = $1")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
