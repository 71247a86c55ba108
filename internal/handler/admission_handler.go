package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/pkg/response"
)

type admissionService interface {
	Create(ctx context.Context, studentID int64, req dto.AdmissionDTO) (*dto.AdmissionDTO, error)
	ListByStudent(ctx context.Context, studentID int64) ([]dto.AdmissionDTO, error)
	ListByStudentNumber(ctx context.Context, studentNumber string) ([]dto.AdmissionDTO, error)
	List(ctx context.Context, query dto.AdmissionListQuery) ([]dto.AdmissionDTO, error)
	Programs(ctx context.Context) ([]string, error)
	Statistics(ctx context.Context, rawYear string) (*dto.AdmissionStatistics, error)
}

// AdmissionHandler exposes admission endpoints.
type AdmissionHandler struct {
	admissions admissionService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(admissions admissionService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions}
}

// Create godoc
// @Summary Record an admission for a student
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.AdmissionDTO true "Admission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/admissions [post]
func (h *AdmissionHandler) Create(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AdmissionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	admission, err := h.admissions.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admission)
}

// ListByStudent godoc
// @Summary List the admissions of a student
// @Tags Admissions
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/admissions [get]
func (h *AdmissionHandler) ListByStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	admissions, err := h.admissions.ListByStudent(c.Request.Context(), id)
	respondAdmissions(c, admissions, err)
}

// ListByStudentNumber godoc
// @Summary List admissions by student number
// @Tags Admissions
// @Produce json
// @Param studentId path string true "Student number"
// @Success 200 {object} response.Envelope
// @Router /students/student-id/{studentId}/admissions [get]
func (h *AdmissionHandler) ListByStudentNumber(c *gin.Context) {
	admissions, err := h.admissions.ListByStudentNumber(c.Request.Context(), c.Param("studentId"))
	respondAdmissions(c, admissions, err)
}

// List godoc
// @Summary List admissions
// @Tags Admissions
// @Produce json
// @Param status query string false "Admission status"
// @Param year query int false "Admission year"
// @Param program query string false "Program"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	query := dto.AdmissionListQuery{Status: c.Query("status"), Year: c.Query("year"), Program: c.Query("program")}
	admissions, err := h.admissions.List(c.Request.Context(), query)
	respondAdmissions(c, admissions, err)
}

// Programs godoc
// @Summary List distinct programs
// @Tags Admissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admissions/programs [get]
func (h *AdmissionHandler) Programs(c *gin.Context) {
	programs, err := h.admissions.Programs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, programs)
}

// Statistics godoc
// @Summary Count admissions per status
// @Tags Admissions
// @Produce json
// @Param year query int false "Also count admissions for this year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admissions/statistics [get]
func (h *AdmissionHandler) Statistics(c *gin.Context) {
	stats, err := h.admissions.Statistics(c.Request.Context(), c.Query("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

func respondAdmissions(c *gin.Context, admissions []dto.AdmissionDTO, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admissions)
}
