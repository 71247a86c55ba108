package models

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

// StudentStatus captures where a student is in their lifecycle.
type StudentStatus string

// Supported student statuses.
const (
	StudentStatusActive     StudentStatus = "ACTIVE"
	StudentStatusInactive   StudentStatus = "INACTIVE"
	StudentStatusGraduated  StudentStatus = "GRADUATED"
	StudentStatusSuspended  StudentStatus = "SUSPENDED"
	StudentStatusDroppedOut StudentStatus = "DROPPED_OUT"
)

// AllStudentStatuses lists every student status in declaration order.
var AllStudentStatuses = []StudentStatus{
	StudentStatusActive,
	StudentStatusInactive,
	StudentStatusGraduated,
	StudentStatusSuspended,
	StudentStatusDroppedOut,
}

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusGraduated, StudentStatusSuspended, StudentStatusDroppedOut:
		return true
	default:
		return false
	}
}

// AdmissionStatus captures the outcome of an admission application.
type AdmissionStatus string

// Supported admission statuses.
const (
	AdmissionStatusPending    AdmissionStatus = "PENDING"
	AdmissionStatusApproved   AdmissionStatus = "APPROVED"
	AdmissionStatusRejected   AdmissionStatus = "REJECTED"
	AdmissionStatusWaitlisted AdmissionStatus = "WAITLISTED"
	AdmissionStatusCancelled  AdmissionStatus = "CANCELLED"
)

// AllAdmissionStatuses lists every admission status in declaration order.
var AllAdmissionStatuses = []AdmissionStatus{
	AdmissionStatusPending,
	AdmissionStatusApproved,
	AdmissionStatusRejected,
	AdmissionStatusWaitlisted,
	AdmissionStatusCancelled,
}

// Valid returns true when the status is a supported value.
func (s AdmissionStatus) Valid() bool {
	switch s {
	case AdmissionStatusPending, AdmissionStatusApproved, AdmissionStatusRejected, AdmissionStatusWaitlisted, AdmissionStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseStudentStatus converts a case-insensitive token into a StudentStatus.
func ParseStudentStatus(raw string) (StudentStatus, error) {
	status := StudentStatus(normaliseToken(raw))
	if !status.Valid() {
		return "", invalidEnum("student status", raw)
	}
	return status, nil
}

// ParseAdmissionStatus converts a case-insensitive token into an AdmissionStatus.
func ParseAdmissionStatus(raw string) (AdmissionStatus, error) {
	status := AdmissionStatus(normaliseToken(raw))
	if !status.Valid() {
		return "", invalidEnum("admission status", raw)
	}
	return status, nil
}

func normaliseToken(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func invalidEnum(kind, raw string) error {
	return appErrors.Clone(appErrors.ErrInvalidEnum, fmt.Sprintf("invalid %s %q", kind, raw))
}
