package dto

import (
	"time"

	"github.com/noah-isme/student-service/internal/models"
)

// AdmissionDTO is the public representation of an admission. StudentID holds
// the owning student's numeric identifier only.
type AdmissionDTO struct {
	ID              int64                  `json:"id,omitempty"`
	StudentID       int64                  `json:"studentId,omitempty"`
	AdmissionYear   *int                   `json:"admissionYear" validate:"required"`
	Program         string                 `json:"program" validate:"required,notblank,max=100"`
	AdmissionDate   *models.Date           `json:"admissionDate"`
	AdmissionStatus models.AdmissionStatus `json:"admissionStatus,omitempty" validate:"omitempty,admission_status"`
	EntranceScore   *float64               `json:"entranceScore"`
	Remarks         *string                `json:"remarks"`
	CreatedAt       *time.Time             `json:"createdAt,omitempty"`
}

// AdmissionListQuery carries the raw admission filter parameters.
type AdmissionListQuery struct {
	Status  string `form:"status"`
	Year    string `form:"year"`
	Program string `form:"program"`
}

// AdmissionStatistics counts admissions per status, optionally for one year.
type AdmissionStatistics struct {
	ByStatus     map[models.AdmissionStatus]int64 `json:"byStatus"`
	Year         *int                             `json:"year,omitempty"`
	TotalForYear *int64                           `json:"totalForYear,omitempty"`
}
