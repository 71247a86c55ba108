package dto

import (
	"time"

	"github.com/noah-isme/student-service/internal/models"
)

// StudentDTO is the public representation of a student.
type StudentDTO struct {
	ID          int64                `json:"id,omitempty"`
	StudentID   string               `json:"studentId" validate:"required,notblank,max=20"`
	FirstName   string               `json:"firstName" validate:"required,notblank,max=50"`
	LastName    string               `json:"lastName" validate:"required,notblank,max=50"`
	Email       string               `json:"email" validate:"required,notblank,max=100,email"`
	Phone       *string              `json:"phone" validate:"omitempty,phone"`
	DateOfBirth *models.Date         `json:"dateOfBirth"`
	Address     *string              `json:"address"`
	Department  *string              `json:"department" validate:"omitempty,max=50"`
	YearOfStudy *int                 `json:"yearOfStudy"`
	Status      models.StudentStatus `json:"status,omitempty" validate:"omitempty,student_status"`
	Admissions  []AdmissionDTO       `json:"admissions"`
	CreatedAt   *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time           `json:"updatedAt,omitempty"`
}

// FullName joins first and last name.
func (s StudentDTO) FullName() string {
	return s.FirstName + " " + s.LastName
}

// UpdateStatusRequest is the PATCH /students/{id}/status payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ExistsResponse answers existence checks.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// StudentStatistics counts students per status.
type StudentStatistics struct {
	TotalActive     int64 `json:"totalActive"`
	TotalInactive   int64 `json:"totalInactive"`
	TotalGraduated  int64 `json:"totalGraduated"`
	TotalSuspended  int64 `json:"totalSuspended"`
	TotalDroppedOut int64 `json:"totalDroppedOut"`
}

// Set stores count under the field matching status.
func (s *StudentStatistics) Set(status models.StudentStatus, count int64) {
	switch status {
	case models.StudentStatusActive:
		s.TotalActive = count
	case models.StudentStatusInactive:
		s.TotalInactive = count
	case models.StudentStatusGraduated:
		s.TotalGraduated = count
	case models.StudentStatusSuspended:
		s.TotalSuspended = count
	case models.StudentStatusDroppedOut:
		s.TotalDroppedOut = count
	}
}

// DepartmentCount is the head count of one department.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// StudentListQuery carries the raw list query parameters.
type StudentListQuery struct {
	Page    int    `form:"page"`
	Size    int    `form:"size"`
	SortBy  string `form:"sortBy"`
	SortDir string `form:"sortDir"`
}
