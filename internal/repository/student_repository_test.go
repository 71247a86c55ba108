package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-service/internal/models"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

var studentRowColumns = []string{"id", "student_id", "first_name", "last_name", "email", "phone", "date_of_birth", "address", "department", "year_of_study", "status", "created_at", "updated_at"}

func adaRow(rows *sqlmock.Rows, id int64) *sqlmock.Rows {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "S100", "Ada", "Lovelace", "ada@x.org", nil, time.Date(2000, 12, 10, 0, 0, 0, 0, time.UTC), nil, "Math", 2, "ACTIVE", now, now)
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT id, student_id, .* FROM students WHERE id = \$1$`).
		WithArgs(int64(7)).
		WillReturnRows(adaRow(sqlmock.NewRows(studentRowColumns), 7))

	student, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	assert.Equal(t, "S100", student.StudentID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	require.NotNil(t, student.DateOfBirth)
	assert.Equal(t, "2000-12-10", student.DateOfBirth.String())
	require.NotNil(t, student.Department)
	assert.Equal(t, "Math", *student.Department)
	assert.Nil(t, student.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE id").WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryFindByIDForUpdateLocksRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`FROM students WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(adaRow(sqlmock.NewRows(studentRowColumns), 7))

	_, err := repo.FindByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM students WHERE email = \$1\)`).
		WithArgs("ada@x.org").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`WHERE student_id = \$1\)`).
		WithArgs("S999").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByEmail(context.Background(), "ada@x.org")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByStudentID(context.Background(), "S999")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`FROM students ORDER BY last_name DESC, id DESC LIMIT 5 OFFSET 10`).
		WillReturnRows(adaRow(sqlmock.NewRows(studentRowColumns), 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentPageRequest{Page: 2, Size: 5, SortBy: "lastName", SortDir: models.SortDesc})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, int64(11), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	_, _, err := repo.List(context.Background(), models.StudentPageRequest{Size: 10, SortBy: "password; DROP TABLE students"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySearchByNameLowercasesPattern(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`LOWER\(first_name\) LIKE \$1 OR LOWER\(last_name\) LIKE \$1`).
		WithArgs("%love%").
		WillReturnRows(adaRow(sqlmock.NewRows(studentRowColumns), 1))

	students, err := repo.SearchByName(context.Background(), "LoVe")
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByDepartmentEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`WHERE department = \$1 ORDER BY id`).
		WithArgs("Physics").
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	students, err := repo.ListByDepartment(context.Background(), "Physics")
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentRepositoryDepartments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT department FROM students WHERE department IS NOT NULL ORDER BY department`).
		WillReturnRows(sqlmock.NewRows([]string{"department"}).AddRow("CS").AddRow("Math"))

	departments, err := repo.Departments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "Math"}, departments)
}

func TestStudentRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE status = \$1`).
		WithArgs("GRADUATED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByStatus(context.Background(), models.StudentStatusGraduated)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestStudentRepositoryCountByDepartment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE department = \$1`).
		WithArgs("Mathematics").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByDepartment(context.Background(), "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO students .* RETURNING id, created_at, updated_at`).
		WithArgs("S100", "Ada", "Lovelace", "ada@x.org", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

	student := &models.Student{StudentID: "S100", FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.org", Status: models.StudentStatusActive}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, int64(42), student.ID)
	assert.Equal(t, now, student.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: emailIndex})

	err := repo.Create(context.Background(), &models.Student{StudentID: "S101", Email: "ada@x.org"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestStudentRepositoryCreateValueTooLong(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "22001", Message: "value too long for type character varying(20)"})

	err := repo.Create(context.Background(), &models.Student{StudentID: "S1234567890123456789012", Email: "ada@x.org"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestStudentRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE students SET first_name = \$2, .* updated_at = NOW\(\) WHERE id = \$1 RETURNING updated_at`).
		WithArgs(int64(7), "Ada", "King", "ada@x.org", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	student := &models.Student{ID: 7, FirstName: "Ada", LastName: "King", Email: "ada@x.org"}
	require.NoError(t, repo.Update(context.Background(), student))
	assert.Equal(t, now, student.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`UPDATE students SET status = \$2, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(int64(7), "GRADUATED").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	err := repo.UpdateStatus(context.Background(), &models.Student{ID: 7, Status: models.StudentStatusGraduated})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`DELETE FROM students WHERE id = \$1`).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM students WHERE id = \$1`).WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
