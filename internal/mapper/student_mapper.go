// Package mapper converts between stored models and public DTOs. Every
// function is pure and returns nil for nil input.
package mapper

import (
	"time"

	"github.com/noah-isme/student-service/internal/dto"
	"github.com/noah-isme/student-service/internal/models"
)

// ToStudentDTO copies a student and flattens its loaded admissions.
func ToStudentDTO(s *models.Student) *dto.StudentDTO {
	if s == nil {
		return nil
	}
	out := &dto.StudentDTO{
		ID:          s.ID,
		StudentID:   s.StudentID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Email:       s.Email,
		Phone:       s.Phone,
		DateOfBirth: s.DateOfBirth,
		Address:     s.Address,
		Department:  s.Department,
		YearOfStudy: s.YearOfStudy,
		Status:      s.Status,
		CreatedAt:   timePtr(s.CreatedAt),
		UpdatedAt:   timePtr(s.UpdatedAt),
		Admissions:  make([]dto.AdmissionDTO, 0, len(s.Admissions)),
	}
	for i := range s.Admissions {
		out.Admissions = append(out.Admissions, *ToAdmissionDTO(&s.Admissions[i]))
	}
	return out
}

// ToStudentDTOs maps a slice of students.
func ToStudentDTOs(students []models.Student) []dto.StudentDTO {
	out := make([]dto.StudentDTO, 0, len(students))
	for i := range students {
		out = append(out, *ToStudentDTO(&students[i]))
	}
	return out
}

// ToStudentModel copies the scalar fields of a DTO. Nested admissions are
// managed separately and are not converted.
func ToStudentModel(d *dto.StudentDTO) *models.Student {
	if d == nil {
		return nil
	}
	return &models.Student{
		ID:          d.ID,
		StudentID:   d.StudentID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Phone:       d.Phone,
		DateOfBirth: d.DateOfBirth,
		Address:     d.Address,
		Department:  d.Department,
		YearOfStudy: d.YearOfStudy,
		Status:      d.Status,
	}
}

// ToAdmissionDTO copies an admission, referencing its student by id only.
func ToAdmissionDTO(a *models.Admission) *dto.AdmissionDTO {
	if a == nil {
		return nil
	}
	year := a.AdmissionYear
	return &dto.AdmissionDTO{
		ID:              a.ID,
		StudentID:       a.StudentID,
		AdmissionYear:   &year,
		Program:         a.Program,
		AdmissionDate:   a.AdmissionDate,
		AdmissionStatus: a.AdmissionStatus,
		EntranceScore:   a.EntranceScore,
		Remarks:         a.Remarks,
		CreatedAt:       timePtr(a.CreatedAt),
	}
}

// ToAdmissionDTOs maps a slice of admissions.
func ToAdmissionDTOs(admissions []models.Admission) []dto.AdmissionDTO {
	out := make([]dto.AdmissionDTO, 0, len(admissions))
	for i := range admissions {
		out = append(out, *ToAdmissionDTO(&admissions[i]))
	}
	return out
}

// ToAdmissionModel copies an admission DTO. The owning student is not set.
func ToAdmissionModel(d *dto.AdmissionDTO) *models.Admission {
	if d == nil {
		return nil
	}
	out := &models.Admission{
		ID:              d.ID,
		Program:         d.Program,
		AdmissionDate:   d.AdmissionDate,
		AdmissionStatus: d.AdmissionStatus,
		EntranceScore:   d.EntranceScore,
		Remarks:         d.Remarks,
	}
	if d.AdmissionYear != nil {
		out.AdmissionYear = *d.AdmissionYear
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
