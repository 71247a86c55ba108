package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-service/internal/models"
)

var admissionRowColumns = []string{"id", "student_id", "admission_year", "program", "admission_date", "admission_status", "entrance_score", "remarks", "created_at"}

func TestAdmissionRepositoryCreateDefaultsDate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	today := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO admissions .* COALESCE\(\$4, CURRENT_DATE\)`).
		WithArgs(int64(7), 2024, "CS", sqlmock.AnyArg(), "PENDING", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "admission_date", "created_at"}).AddRow(3, today, time.Now()))

	admission := &models.Admission{StudentID: 7, AdmissionYear: 2024, Program: "CS", AdmissionStatus: models.AdmissionStatusPending}
	require.NoError(t, repo.Create(context.Background(), admission))
	assert.Equal(t, int64(3), admission.ID)
	require.NotNil(t, admission.AdmissionDate)
	assert.Equal(t, "2024-09-01", admission.AdmissionDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryListByStudentIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(`WHERE student_id = ANY\(\$1\) ORDER BY student_id, id`).
		WithArgs("{1,2}").
		WillReturnRows(sqlmock.NewRows(admissionRowColumns).
			AddRow(1, 1, 2023, "CS", time.Now(), "APPROVED", 88.5, nil, time.Now()).
			AddRow(2, 2, 2024, "Math", nil, "PENDING", nil, "late", time.Now()))

	admissions, err := repo.ListByStudentIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, admissions, 2)
	assert.Equal(t, models.AdmissionStatusApproved, admissions[0].AdmissionStatus)
	require.NotNil(t, admissions[0].EntranceScore)
	assert.InDelta(t, 88.5, *admissions[0].EntranceScore, 0.001)
	assert.Nil(t, admissions[1].AdmissionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryListByStudentIDsEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	admissions, err := repo.ListByStudentIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, admissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryListByStudentNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(`JOIN students s ON s.id = a.student_id WHERE s.student_id = \$1`).
		WithArgs("S100").
		WillReturnRows(sqlmock.NewRows(admissionRowColumns))

	admissions, err := repo.ListByStudentNumber(context.Background(), "S100")
	require.NoError(t, err)
	assert.Empty(t, admissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	status := models.AdmissionStatusApproved
	year := 2024
	mock.ExpectQuery(`FROM admissions WHERE admission_status = \$1 AND admission_year = \$2 AND program = \$3 ORDER BY id`).
		WithArgs("APPROVED", 2024, "CS").
		WillReturnRows(sqlmock.NewRows(admissionRowColumns))
	mock.ExpectQuery(`FROM admissions ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(admissionRowColumns))

	_, err := repo.List(context.Background(), models.AdmissionFilter{Status: &status, Year: &year, Program: " CS "})
	require.NoError(t, err)
	_, err = repo.List(context.Background(), models.AdmissionFilter{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(`WHERE admission_status = \$1`).WithArgs("REJECTED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`WHERE admission_year = \$1`).WithArgs(2023).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectQuery(`SELECT DISTINCT program FROM admissions ORDER BY program`).
		WillReturnRows(sqlmock.NewRows([]string{"program"}).AddRow("CS").AddRow("Math"))

	byStatus, err := repo.CountByStatus(context.Background(), models.AdmissionStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, int64(4), byStatus)

	byYear, err := repo.CountByYear(context.Background(), 2023)
	require.NoError(t, err)
	assert.Equal(t, int64(9), byYear)

	programs, err := repo.Programs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "Math"}, programs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
