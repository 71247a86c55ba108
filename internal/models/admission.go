package models

import "time"

// Admission records one application of a student into a program for a given year.
type Admission struct {
	ID              int64           `db:"id"`
	StudentID       int64           `db:"student_id"`
	AdmissionYear   int             `db:"admission_year"`
	Program         string          `db:"program"`
	AdmissionDate   *Date           `db:"admission_date"`
	AdmissionStatus AdmissionStatus `db:"admission_status"`
	EntranceScore   *float64        `db:"entrance_score"`
	Remarks         *string         `db:"remarks"`
	CreatedAt       time.Time       `db:"created_at"`
}

// AdmissionFilter narrows admission listings. Zero values do not filter.
type AdmissionFilter struct {
	Status  *AdmissionStatus
	Year    *int
	Program string
}
