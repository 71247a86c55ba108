package models

import "time"

// Student represents a learner registered with the college.
type Student struct {
	ID          int64         `db:"id"`
	StudentID   string        `db:"student_id"`
	FirstName   string        `db:"first_name"`
	LastName    string        `db:"last_name"`
	Email       string        `db:"email"`
	Phone       *string       `db:"phone"`
	DateOfBirth *Date         `db:"date_of_birth"`
	Address     *string       `db:"address"`
	Department  *string       `db:"department"`
	YearOfStudy *int          `db:"year_of_study"`
	Status      StudentStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`

	// Admissions is only populated when the caller explicitly loads them.
	Admissions []Admission `db:"-"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// SortDirection orders paged listings.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// StudentPageRequest describes one page of the student listing.
type StudentPageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir SortDirection
}

// Offset returns the number of rows skipped before the page.
func (p StudentPageRequest) Offset() int {
	return p.Page * p.Size
}
