package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/internal/mapper"
	"github.com/noah-isme/student-service/internal/models"
	"github.com/noah-isme/student-service/pkg/cache"
	"github.com/noah-isme/student-service/pkg/config"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

const defaultSortField = "id"

type studentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page models.StudentPageRequest) ([]models.Student, int64, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	ListByDepartment(ctx context.Context, department string) ([]models.Student, error)
	ListByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error)
	ListByDepartmentAndStatus(ctx context.Context, department string, status models.StudentStatus) ([]models.Student, error)
	ListByYearOfStudy(ctx context.Context, year int) ([]models.Student, error)
	SearchByName(ctx context.Context, name string) ([]models.Student, error)
	CountByStatus(ctx context.Context, status models.StudentStatus) (int64, error)
	CountByDepartment(ctx context.Context, department string) (int64, error)
	Departments(ctx context.Context) ([]string, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type studentAdmissionRepository interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Admission, error)
	ListByStudentIDs(ctx context.Context, studentIDs []int64) ([]models.Admission, error)
	DeleteByStudent(ctx context.Context, studentID int64) (int64, error)
}

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// StudentService handles student use-cases.
type StudentService struct {
	repo       studentRepository
	admissions studentAdmissionRepository
	tx         transactor
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	pagination config.PaginationConfig
}

// NewStudentService constructs the student service. cache and metrics may be nil.
func NewStudentService(
	repo studentRepository,
	admissions studentAdmissionRepository,
	tx transactor,
	cacheSvc *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	pagination config.PaginationConfig,
) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pagination.DefaultSize <= 0 {
		pagination.DefaultSize = 10
	}
	if pagination.MaxSize < pagination.DefaultSize {
		pagination.MaxSize = pagination.DefaultSize
	}
	registerValidations(validate)
	return &StudentService{
		repo:       repo,
		admissions: admissions,
		tx:         tx,
		cache:      cacheSvc,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		pagination: pagination,
	}
}

// Create registers a new student. The status is always ACTIVE regardless of the payload.
func (s *StudentService) Create(ctx context.Context, req dto.StudentDTO) (*dto.StudentDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "student")
	}

	student := mapper.ToStudentModel(&req)
	student.ID = 0
	student.Status = models.StudentStatusActive

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByStudentID(ctx, student.StudentID)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student with id %s already exists", student.StudentID))
		}
		exists, err = s.repo.ExistsByEmail(ctx, student.Email)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student with email %s already exists", student.Email))
		}
		return s.repo.Create(ctx, student)
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}

	s.afterMutation(ctx, MutationCreate)
	s.logger.Info("student created", zap.Int64("id", student.ID), zap.String("student_id", student.StudentID))
	return mapper.ToStudentDTO(student), nil
}

// Update overwrites the profile fields of an existing student. Status and
// student id are not changed.
func (s *StudentService) Update(ctx context.Context, id int64, req dto.StudentDTO) (*dto.StudentDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "student")
	}

	var student *models.Student
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return studentNotFound(id)
			}
			return err
		}

		if req.Email != current.Email {
			owner, err := s.repo.FindByEmail(ctx, req.Email)
			switch {
			case err == nil && owner.ID != id:
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student with email %s already exists", req.Email))
			case err != nil && !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		current.FirstName = req.FirstName
		current.LastName = req.LastName
		current.Email = req.Email
		current.Phone = req.Phone
		current.DateOfBirth = req.DateOfBirth
		current.Address = req.Address
		current.Department = req.Department
		current.YearOfStudy = req.YearOfStudy
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}

		current.Admissions, err = s.admissions.ListByStudent(ctx, id)
		if err != nil {
			return err
		}
		student = current
		return nil
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update student")
	}

	s.afterMutation(ctx, MutationUpdate)
	s.logger.Info("student updated", zap.Int64("id", id))
	return mapper.ToStudentDTO(student), nil
}

// UpdateStatus moves a student to the status named by raw. Any transition is allowed.
func (s *StudentService) UpdateStatus(ctx context.Context, id int64, raw string) (*dto.StudentDTO, error) {
	status, err := models.ParseStudentStatus(raw)
	if err != nil {
		return nil, err
	}

	var student *models.Student
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return studentNotFound(id)
			}
			return err
		}
		current.Status = status
		if err := s.repo.UpdateStatus(ctx, current); err != nil {
			return err
		}
		current.Admissions, err = s.admissions.ListByStudent(ctx, id)
		if err != nil {
			return err
		}
		student = current
		return nil
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update student status")
	}

	s.afterMutation(ctx, MutationUpdateStatus)
	s.logger.Info("student status updated", zap.Int64("id", id), zap.String("status", string(status)))
	return mapper.ToStudentDTO(student), nil
}

// Delete removes a student and its admissions. It reports false when the student does not exist.
func (s *StudentService) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if _, err := s.admissions.DeleteByStudent(ctx, id); err != nil {
			return err
		}
		var err error
		deleted, err = s.repo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, appErrors.Internal(err, "failed to delete student")
	}
	if deleted {
		s.afterMutation(ctx, MutationDelete)
		s.logger.Info("student deleted", zap.Int64("id", id))
	}
	return deleted, nil
}

// GetByID returns the student with its admissions. found is false when there is no such student.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*dto.StudentDTO, bool, error) {
	return s.getOne(ctx, func() (*models.Student, error) { return s.repo.FindByID(ctx, id) })
}

// GetByStudentID looks a student up by the externally assigned id.
func (s *StudentService) GetByStudentID(ctx context.Context, studentID string) (*dto.StudentDTO, bool, error) {
	return s.getOne(ctx, func() (*models.Student, error) { return s.repo.FindByStudentID(ctx, studentID) })
}

func (s *StudentService) getOne(ctx context.Context, find func() (*models.Student, error)) (*dto.StudentDTO, bool, error) {
	student, err := find()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, appErrors.Internal(err, "failed to load student")
	}
	student.Admissions, err = s.admissions.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load admissions")
	}
	return mapper.ToStudentDTO(student), true, nil
}

// List returns one page of students. Missing or out-of-range parameters fall
// back to page 0, the configured page size, and ascending id order.
func (s *StudentService) List(ctx context.Context, query dto.StudentListQuery) ([]dto.StudentDTO, *models.Pagination, error) {
	page := s.pageRequest(query)
	students, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	out, err := s.withAdmissions(ctx, students)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("students listed", zap.Int("page", page.Page), zap.Int("size", page.Size), zap.String("sort", page.SortBy), zap.Int64("total", total))
	return out, models.NewPagination(page.Page, page.Size, total), nil
}

func (s *StudentService) pageRequest(query dto.StudentListQuery) models.StudentPageRequest {
	page := models.StudentPageRequest{
		Page:    query.Page,
		Size:    query.Size,
		SortBy:  strings.TrimSpace(query.SortBy),
		SortDir: models.SortAsc,
	}
	if page.Page < 0 {
		page.Page = 0
	}
	if page.Size < 1 {
		page.Size = s.pagination.DefaultSize
	}
	if page.Size > s.pagination.MaxSize {
		page.Size = s.pagination.MaxSize
	}
	if page.SortBy == "" {
		page.SortBy = defaultSortField
	}
	if strings.EqualFold(strings.TrimSpace(query.SortDir), "desc") {
		page.SortDir = models.SortDesc
	}
	return page
}

// ListByDepartment returns every student of a department, optionally narrowed to a status.
func (s *StudentService) ListByDepartment(ctx context.Context, department, rawStatus string) ([]dto.StudentDTO, error) {
	var (
		students []models.Student
		err      error
	)
	if strings.TrimSpace(rawStatus) == "" {
		students, err = s.repo.ListByDepartment(ctx, department)
	} else {
		status, parseErr := models.ParseStudentStatus(rawStatus)
		if parseErr != nil {
			return nil, parseErr
		}
		students, err = s.repo.ListByDepartmentAndStatus(ctx, department, status)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students by department")
	}
	return s.withAdmissions(ctx, students)
}

// ListByStatus returns every student with the status named by raw.
func (s *StudentService) ListByStatus(ctx context.Context, raw string) ([]dto.StudentDTO, error) {
	status, err := models.ParseStudentStatus(raw)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students by status")
	}
	return s.withAdmissions(ctx, students)
}

// ListByYearOfStudy returns every student in the given year of study.
func (s *StudentService) ListByYearOfStudy(ctx context.Context, year int) ([]dto.StudentDTO, error) {
	students, err := s.repo.ListByYearOfStudy(ctx, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students by year")
	}
	return s.withAdmissions(ctx, students)
}

// SearchByName matches name case-insensitively against first or last name.
func (s *StudentService) SearchByName(ctx context.Context, name string) ([]dto.StudentDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be blank")
	}
	students, err := s.repo.SearchByName(ctx, name)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search students")
	}
	s.logger.Debug("students searched", zap.String("name", name), zap.Int("matches", len(students)))
	return s.withAdmissions(ctx, students)
}

// ListAll returns every student without admissions, ordered by id.
func (s *StudentService) ListAll(ctx context.Context) ([]dto.StudentDTO, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return mapper.ToStudentDTOs(students), nil
}

// Departments lists distinct department names in ascending order.
func (s *StudentService) Departments(ctx context.Context) ([]string, error) {
	key := cache.Key("students", "departments")
	var departments []string
	if s.cache.Get(ctx, key, &departments) {
		return departments, nil
	}

	gen := s.cache.Generation()
	departments, err := s.repo.Departments(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list departments")
	}
	s.cache.SetFresh(ctx, key, departments, gen)
	return departments, nil
}

// CountByStatus counts students in status.
func (s *StudentService) CountByStatus(ctx context.Context, status models.StudentStatus) (int64, error) {
	count, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count students")
	}
	return count, nil
}

// CountByDepartment counts the students of a department.
func (s *StudentService) CountByDepartment(ctx context.Context, department string) (*dto.DepartmentCount, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department must not be blank")
	}
	count, err := s.repo.CountByDepartment(ctx, department)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count students")
	}
	return &dto.DepartmentCount{Department: department, Count: count}, nil
}

// Statistics counts students for every status.
func (s *StudentService) Statistics(ctx context.Context) (*dto.StudentStatistics, error) {
	key := cache.Key("students", "statistics")
	var stats dto.StudentStatistics
	if s.cache.Get(ctx, key, &stats) {
		return &stats, nil
	}

	gen := s.cache.Generation()
	for _, status := range models.AllStudentStatuses {
		count, err := s.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats.Set(status, count)
	}
	s.cache.SetFresh(ctx, key, stats, gen)
	return &stats, nil
}

// ExistsByStudentID reports whether the student id is taken.
func (s *StudentService) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	exists, err := s.repo.ExistsByStudentID(ctx, studentID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check student id")
	}
	return exists, nil
}

// ExistsByEmail reports whether the email is taken.
func (s *StudentService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check email")
	}
	return exists, nil
}

// withAdmissions loads the admissions of all students with one query.
func (s *StudentService) withAdmissions(ctx context.Context, students []models.Student) ([]dto.StudentDTO, error) {
	if len(students) == 0 {
		return []dto.StudentDTO{}, nil
	}

	ids := make([]int64, len(students))
	for i := range students {
		ids[i] = students[i].ID
	}
	admissions, err := s.admissions.ListByStudentIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load admissions")
	}

	byStudent := make(map[int64][]models.Admission, len(students))
	for _, a := range admissions {
		byStudent[a.StudentID] = append(byStudent[a.StudentID], a)
	}
	for i := range students {
		students[i].Admissions = byStudent[students[i].ID]
	}
	return mapper.ToStudentDTOs(students), nil
}

func (s *StudentService) afterMutation(ctx context.Context, operation string) {
	s.cache.InvalidateStudents(ctx)
	s.metrics.RecordMutation(operation)
}

func studentNotFound(id int64) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student not found with id: %d", id))
}
