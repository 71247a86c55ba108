package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/internal/models"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

func newAdmissionFixture(t *testing.T) (*AdmissionService, *studentFixture) {
	t.Helper()
	f := newStudentFixture(t)
	svc := NewAdmissionService(f.admissions, f.repo, f.tx, nil, nil, validator.New(), zap.NewNop())
	return svc, f
}

func TestAdmissionServiceCreateDefaults(t *testing.T) {
	svc, f := newAdmissionFixture(t)
	ctx := context.Background()
	student, err := f.svc.Create(ctx, adaPayload())
	require.NoError(t, err)

	admission, err := svc.Create(ctx, student.ID, dto.AdmissionDTO{AdmissionYear: intPtr(2024), Program: "Computer Science"})
	require.NoError(t, err)
	assert.NotZero(t, admission.ID)
	assert.Equal(t, student.ID, admission.StudentID)
	assert.Equal(t, models.AdmissionStatusPending, admission.AdmissionStatus)
	require.NotNil(t, admission.AdmissionDate)
	assert.Equal(t, models.Today().String(), admission.AdmissionDate.String())

	got, found, err := f.svc.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Admissions, 1)
	assert.Equal(t, "Computer Science", got.Admissions[0].Program)
}

func TestAdmissionServiceCreateKeepsExplicitValues(t *testing.T) {
	svc, f := newAdmissionFixture(t)
	ctx := context.Background()
	student, err := f.svc.Create(ctx, adaPayload())
	require.NoError(t, err)

	date := models.NewDate(time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC))
	score := 91.5
	admission, err := svc.Create(ctx, student.ID, dto.AdmissionDTO{
		AdmissionYear:   intPtr(0),
		Program:         "Math",
		AdmissionDate:   &date,
		AdmissionStatus: models.AdmissionStatusApproved,
		EntranceScore:   &score,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, *admission.AdmissionYear)
	assert.Equal(t, "2023-08-15", admission.AdmissionDate.String())
	assert.Equal(t, models.AdmissionStatusApproved, admission.AdmissionStatus)
	assert.InDelta(t, 91.5, *admission.EntranceScore, 0.001)
}

func TestAdmissionServiceCreateValidation(t *testing.T) {
	svc, f := newAdmissionFixture(t)
	ctx := context.Background()
	student, err := f.svc.Create(ctx, adaPayload())
	require.NoError(t, err)
	calls := f.tx.calls

	_, err = svc.Create(ctx, student.ID, dto.AdmissionDTO{Program: "CS"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "admissionYear")

	_, err = svc.Create(ctx, student.ID, dto.AdmissionDTO{AdmissionYear: intPtr(2024), Program: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, student.ID, dto.AdmissionDTO{AdmissionYear: intPtr(2024), Program: "CS", AdmissionStatus: "MAYBE"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, calls, f.tx.calls)
}

func TestAdmissionServiceMissingStudent(t *testing.T) {
	svc, _ := newAdmissionFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 42, dto.AdmissionDTO{AdmissionYear: intPtr(2024), Program: "CS"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.ListByStudent(ctx, 42)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAdmissionServiceQueries(t *testing.T) {
	svc, f := newAdmissionFixture(t)
	ctx := context.Background()
	student, err := f.svc.Create(ctx, adaPayload())
	require.NoError(t, err)

	for _, req := range []dto.AdmissionDTO{
		{AdmissionYear: intPtr(2023), Program: "Math", AdmissionStatus: models.AdmissionStatusRejected},
		{AdmissionYear: intPtr(2024), Program: "CS", AdmissionStatus: models.AdmissionStatusApproved},
		{AdmissionYear: intPtr(2024), Program: "CS"},
	} {
		_, err := svc.Create(ctx, student.ID, req)
		require.NoError(t, err)
	}

	byStudent, err := svc.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 3)

	byNumber, err := svc.ListByStudentNumber(ctx, "S100")
	require.NoError(t, err)
	assert.Len(t, byNumber, 3)

	filtered, err := svc.List(ctx, dto.AdmissionListQuery{Status: "approved", Year: "2024", Program: "CS"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)

	_, err = svc.List(ctx, dto.AdmissionListQuery{Status: "unknown"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidEnum)

	_, err = svc.List(ctx, dto.AdmissionListQuery{Year: "twenty"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	programs, err := svc.Programs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "Math"}, programs)

	stats, err := svc.Statistics(ctx, "2024")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus[models.AdmissionStatusPending])
	assert.Equal(t, int64(1), stats.ByStatus[models.AdmissionStatusApproved])
	assert.Equal(t, int64(1), stats.ByStatus[models.AdmissionStatusRejected])
	assert.Equal(t, int64(0), stats.ByStatus[models.AdmissionStatusCancelled])
	require.NotNil(t, stats.TotalForYear)
	assert.Equal(t, int64(2), *stats.TotalForYear)

	withoutYear, err := svc.Statistics(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, withoutYear.Year)
	assert.Len(t, withoutYear.ByStatus, len(models.AllAdmissionStatuses))
}
