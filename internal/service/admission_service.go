package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/internal/mapper"
	"github.com/noah-isme/student-service/internal/models"
	"github.com/noah-isme/student-service/pkg/cache"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

type admissionRepository interface {
	Create(ctx context.Context, admission *models.Admission) error
	ListByStudent(ctx context.Context, studentID int64) ([]models.Admission, error)
	ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.Admission, error)
	List(ctx context.Context, filter models.AdmissionFilter) ([]models.Admission, error)
	CountByStatus(ctx context.Context, status models.AdmissionStatus) (int64, error)
	CountByYear(ctx context.Context, year int) (int64, error)
	Programs(ctx context.Context) ([]string, error)
}

type admissionStudentLookup interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// AdmissionService records and reports admissions. Admissions cannot be
// changed once created.
type AdmissionService struct {
	repo      admissionRepository
	students  admissionStudentLookup
	tx        transactor
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdmissionService constructs the admission service.
func NewAdmissionService(repo admissionRepository, students admissionStudentLookup, tx transactor, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidations(validate)
	return &AdmissionService{repo: repo, students: students, tx: tx, cache: cacheSvc, metrics: metrics, validator: validate, logger: logger}
}

// Create adds an admission to a student. The date defaults to today and the status to PENDING.
func (s *AdmissionService) Create(ctx context.Context, studentID int64, req dto.AdmissionDTO) (*dto.AdmissionDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "admission")
	}

	admission := mapper.ToAdmissionModel(&req)
	admission.ID = 0
	admission.StudentID = studentID
	if admission.AdmissionStatus == "" {
		admission.AdmissionStatus = models.AdmissionStatusPending
	}
	if admission.AdmissionDate == nil {
		today := models.Today()
		admission.AdmissionDate = &today
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireStudent(ctx, studentID); err != nil {
			return err
		}
		return s.repo.Create(ctx, admission)
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create admission")
	}

	s.cache.InvalidateStudents(ctx)
	s.metrics.RecordMutation(MutationCreateAdmission)
	s.logger.Info("admission created", zap.Int64("student_id", studentID), zap.Int64("id", admission.ID), zap.String("program", admission.Program))
	return mapper.ToAdmissionDTO(admission), nil
}

// ListByStudent returns the admissions of an existing student.
func (s *AdmissionService) ListByStudent(ctx context.Context, studentID int64) ([]dto.AdmissionDTO, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, appErrors.Internal(err, "failed to load student")
	}
	admissions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admissions")
	}
	return mapper.ToAdmissionDTOs(admissions), nil
}

// ListByStudentNumber returns the admissions of the student with the external id.
func (s *AdmissionService) ListByStudentNumber(ctx context.Context, studentNumber string) ([]dto.AdmissionDTO, error) {
	admissions, err := s.repo.ListByStudentNumber(ctx, studentNumber)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admissions")
	}
	return mapper.ToAdmissionDTOs(admissions), nil
}

// List returns admissions matching the query. Blank parameters do not filter.
func (s *AdmissionService) List(ctx context.Context, query dto.AdmissionListQuery) ([]dto.AdmissionDTO, error) {
	filter := models.AdmissionFilter{Program: strings.TrimSpace(query.Program)}
	if strings.TrimSpace(query.Status) != "" {
		status, err := models.ParseAdmissionStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if strings.TrimSpace(query.Year) != "" {
		year, err := parseYear(query.Year)
		if err != nil {
			return nil, err
		}
		filter.Year = &year
	}

	admissions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admissions")
	}
	return mapper.ToAdmissionDTOs(admissions), nil
}

// Programs lists distinct program names.
func (s *AdmissionService) Programs(ctx context.Context) ([]string, error) {
	key := cache.Key("admissions", "programs")
	var programs []string
	if s.cache.Get(ctx, key, &programs) {
		return programs, nil
	}
	gen := s.cache.Generation()
	programs, err := s.repo.Programs(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list programs")
	}
	s.cache.SetFresh(ctx, key, programs, gen)
	return programs, nil
}

// Statistics counts admissions per status and, when rawYear is set, for that year.
func (s *AdmissionService) Statistics(ctx context.Context, rawYear string) (*dto.AdmissionStatistics, error) {
	stats := &dto.AdmissionStatistics{ByStatus: make(map[models.AdmissionStatus]int64, len(models.AllAdmissionStatuses))}
	for _, status := range models.AllAdmissionStatuses {
		count, err := s.repo.CountByStatus(ctx, status)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count admissions")
		}
		stats.ByStatus[status] = count
	}

	if strings.TrimSpace(rawYear) != "" {
		year, err := parseYear(rawYear)
		if err != nil {
			return nil, err
		}
		total, err := s.repo.CountByYear(ctx, year)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count admissions")
		}
		stats.Year = &year
		stats.TotalForYear = &total
	}
	return stats, nil
}

func (s *AdmissionService) requireStudent(ctx context.Context, studentID int64) error {
	exists, err := s.students.ExistsByID(ctx, studentID)
	if err != nil {
		return err
	}
	if !exists {
		return studentNotFound(studentID)
	}
	return nil
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "year must be a number")
	}
	return year, nil
}
