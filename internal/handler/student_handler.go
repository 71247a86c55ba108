package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/internal/models"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
	"github.com/noah-isme/student-service/pkg/response"
)

type studentService interface {
	Create(ctx context.Context, req dto.StudentDTO) (*dto.StudentDTO, error)
	Update(ctx context.Context, id int64, req dto.StudentDTO) (*dto.StudentDTO, error)
	UpdateStatus(ctx context.Context, id int64, raw string) (*dto.StudentDTO, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*dto.StudentDTO, bool, error)
	GetByStudentID(ctx context.Context, studentID string) (*dto.StudentDTO, bool, error)
	List(ctx context.Context, query dto.StudentListQuery) ([]dto.StudentDTO, *models.Pagination, error)
	ListByDepartment(ctx context.Context, department, rawStatus string) ([]dto.StudentDTO, error)
	ListByStatus(ctx context.Context, raw string) ([]dto.StudentDTO, error)
	ListByYearOfStudy(ctx context.Context, year int) ([]dto.StudentDTO, error)
	SearchByName(ctx context.Context, name string) ([]dto.StudentDTO, error)
	Departments(ctx context.Context) ([]string, error)
	CountByDepartment(ctx context.Context, department string) (*dto.DepartmentCount, error)
	Statistics(ctx context.Context) (*dto.StudentStatistics, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.StudentDTO true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.StudentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// List godoc
// @Summary List students page by page
// @Tags Students
// @Produce json
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(10)
// @Param sortBy query string false "Sort field; unknown fields are rejected with 400" Enums(id, studentId, student_id, firstName, first_name, lastName, last_name, email, dateOfBirth, date_of_birth, department, yearOfStudy, year_of_study, status, createdAt, created_at, updatedAt, updated_at) default(id)
// @Param sortDir query string false "asc or desc" default(asc)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var query dto.StudentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	students, pagination, err := h.students.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get a student by numeric id
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	student, found, err := h.students.GetByID(c.Request.Context(), id)
	h.respondOne(c, student, found, err)
}

// GetByStudentID godoc
// @Summary Get a student by student number
// @Tags Students
// @Produce json
// @Param studentId path string true "Student number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/student-id/{studentId} [get]
func (h *StudentHandler) GetByStudentID(c *gin.Context) {
	student, found, err := h.students.GetByStudentID(c.Request.Context(), c.Param("studentId"))
	h.respondOne(c, student, found, err)
}

func (h *StudentHandler) respondOne(c *gin.Context, student *dto.StudentDTO, found bool, err error) {
	switch {
	case err != nil:
		response.Error(c, err)
	case !found:
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "student not found"))
	default:
		response.OK(c, student)
	}
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.StudentDTO true "Student payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.StudentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Delete godoc
// @Summary Delete a student and its admissions
// @Tags Students
// @Param id path int true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.students.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "student not found"))
		return
	}
	response.NoContent(c)
}

// UpdateStatus godoc
// @Summary Change the status of a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/status [patch]
func (h *StudentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.students.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// ListByDepartment godoc
// @Summary List students of a department
// @Tags Students
// @Produce json
// @Param department path string true "Department"
// @Param status query string false "Narrow to a status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/department/{department} [get]
func (h *StudentHandler) ListByDepartment(c *gin.Context) {
	students, err := h.students.ListByDepartment(c.Request.Context(), c.Param("department"), c.Query("status"))
	respondList(c, students, err)
}

// CountByDepartment godoc
// @Summary Count the students of a department
// @Tags Students
// @Produce json
// @Param department path string true "Department"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/department/{department}/count [get]
func (h *StudentHandler) CountByDepartment(c *gin.Context) {
	count, err := h.students.CountByDepartment(c.Request.Context(), c.Param("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, count)
}

// ListByStatus godoc
// @Summary List students by status
// @Tags Students
// @Produce json
// @Param status path string true "ACTIVE, INACTIVE, GRADUATED, SUSPENDED or DROPPED_OUT"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/status/{status} [get]
func (h *StudentHandler) ListByStatus(c *gin.Context) {
	students, err := h.students.ListByStatus(c.Request.Context(), c.Param("status"))
	respondList(c, students, err)
}

// ListByYear godoc
// @Summary List students by year of study
// @Tags Students
// @Produce json
// @Param year path int true "Year of study"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/year/{year} [get]
func (h *StudentHandler) ListByYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	students, err := h.students.ListByYearOfStudy(c.Request.Context(), year)
	respondList(c, students, err)
}

// Search godoc
// @Summary Search students by first or last name
// @Tags Students
// @Produce json
// @Param name query string true "Name fragment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	students, err := h.students.SearchByName(c.Request.Context(), c.Query("name"))
	respondList(c, students, err)
}

// Departments godoc
// @Summary List distinct departments
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/departments [get]
func (h *StudentHandler) Departments(c *gin.Context) {
	departments, err := h.students.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, departments)
}

// Statistics godoc
// @Summary Count students per status
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/statistics [get]
func (h *StudentHandler) Statistics(c *gin.Context) {
	stats, err := h.students.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// ExistsByStudentID godoc
// @Summary Check whether a student number is taken
// @Tags Students
// @Produce json
// @Param studentId path string true "Student number"
// @Success 200 {object} response.Envelope
// @Router /students/exists/student-id/{studentId} [get]
func (h *StudentHandler) ExistsByStudentID(c *gin.Context) {
	exists, err := h.students.ExistsByStudentID(c.Request.Context(), c.Param("studentId"))
	respondExists(c, exists, err)
}

// ExistsByEmail godoc
// @Summary Check whether an email is taken
// @Tags Students
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} response.Envelope
// @Router /students/exists/email/{email} [get]
func (h *StudentHandler) ExistsByEmail(c *gin.Context) {
	exists, err := h.students.ExistsByEmail(c.Request.Context(), c.Param("email"))
	respondExists(c, exists, err)
}

func respondList(c *gin.Context, students []dto.StudentDTO, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

func respondExists(c *gin.Context, exists bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ExistsResponse{Exists: exists})
}

// pathID parses the numeric :id parameter and answers 400 when it is malformed.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student id"))
		return 0, false
	}
	return id, true
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload: "+err.Error())
}
