package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-service/internal/models"
	"github.com/noah-isme/student-service/pkg/database"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

const studentColumns = `id, student_id, first_name, last_name, email, phone, date_of_birth, address, department, year_of_study, status, created_at, updated_at`

// Unique index names from the students migration.
const (
	studentIDIndex = "idx_student_student_id"
	emailIndex     = "idx_student_email"
)

// StudentSortColumns maps accepted sort keys to their column.
var StudentSortColumns = map[string]string{
	"id":            "id",
	"studentId":     "student_id",
	"student_id":    "student_id",
	"firstName":     "first_name",
	"first_name":    "first_name",
	"lastName":      "last_name",
	"last_name":     "last_name",
	"email":         "email",
	"dateOfBirth":   "date_of_birth",
	"date_of_birth": "date_of_birth",
	"department":    "department",
	"yearOfStudy":   "year_of_study",
	"year_of_study": "year_of_study",
	"status":        "status",
	"createdAt":     "created_at",
	"created_at":    "created_at",
	"updatedAt":     "updated_at",
	"updated_at":    "updated_at",
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID fetches a student by primary key. Admissions are not loaded.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.findOne(ctx, "SELECT "+studentColumns+" FROM students WHERE id = $1", id)
}

// FindByIDForUpdate fetches a student and locks its row until the surrounding transaction ends.
func (r *StudentRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return r.findOne(ctx, "SELECT "+studentColumns+" FROM students WHERE id = $1 FOR UPDATE", id)
}

// FindByStudentID fetches a student by the externally assigned student id.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	return r.findOne(ctx, "SELECT "+studentColumns+" FROM students WHERE student_id = $1", studentID)
}

// FindByEmail fetches a student by email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.findOne(ctx, "SELECT "+studentColumns+" FROM students WHERE email = $1", email)
}

func (r *StudentRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Student, error) {
	var student models.Student
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &student, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByID reports whether a student with the id exists.
func (r *StudentRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", id)
}

// ExistsByStudentID reports whether the student id is taken.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE student_id = $1)", studentID)
}

// ExistsByEmail reports whether the email is taken.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE email = $1)", email)
}

func (r *StudentRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &exists, query, arg); err != nil {
		return false, fmt.Errorf("check student existence: %w", err)
	}
	return exists, nil
}

// List returns one page of students ordered by a whitelisted column, and the total count.
func (r *StudentRepository) List(ctx context.Context, page models.StudentPageRequest) ([]models.Student, int64, error) {
	column, ok := StudentSortColumns[page.SortBy]
	if !ok {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported sort field %q", page.SortBy))
	}
	direction := models.SortAsc
	if page.SortDir == models.SortDesc {
		direction = models.SortDesc
	}
	// id breaks ties so pages stay stable when the sort column repeats
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY %s %s, id %s LIMIT %d OFFSET %d",
		studentColumns, column, direction, direction, page.Size, page.Offset())

	q := executor(ctx, r.db)
	var students []models.Student
	if err := sqlx.SelectContext(ctx, q, &students, query); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int64
	if err := sqlx.GetContext(ctx, q, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every student ordered by id.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	return r.selectMany(ctx, "list all students", "SELECT "+studentColumns+" FROM students ORDER BY id")
}

// ListByDepartment returns students of a department.
func (r *StudentRepository) ListByDepartment(ctx context.Context, department string) ([]models.Student, error) {
	return r.selectMany(ctx, "list students by department",
		"SELECT "+studentColumns+" FROM students WHERE department = $1 ORDER BY id", department)
}

// ListByStatus returns students with the given status.
func (r *StudentRepository) ListByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error) {
	return r.selectMany(ctx, "list students by status",
		"SELECT "+studentColumns+" FROM students WHERE status = $1 ORDER BY id", status)
}

// ListByDepartmentAndStatus returns students matching both department and status.
func (r *StudentRepository) ListByDepartmentAndStatus(ctx context.Context, department string, status models.StudentStatus) ([]models.Student, error) {
	return r.selectMany(ctx, "list students by department and status",
		"SELECT "+studentColumns+" FROM students WHERE department = $1 AND status = $2 ORDER BY id", department, status)
}

// ListByYearOfStudy returns students in a given year of study.
func (r *StudentRepository) ListByYearOfStudy(ctx context.Context, year int) ([]models.Student, error) {
	return r.selectMany(ctx, "list students by year",
		"SELECT "+studentColumns+" FROM students WHERE year_of_study = $1 ORDER BY id", year)
}

// SearchByName matches a case-insensitive substring against first or last name.
func (r *StudentRepository) SearchByName(ctx context.Context, name string) ([]models.Student, error) {
	pattern := "%" + strings.ToLower(name) + "%"
	return r.selectMany(ctx, "search students",
		"SELECT "+studentColumns+" FROM students WHERE LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1 ORDER BY id", pattern)
}

func (r *StudentRepository) selectMany(ctx context.Context, op, query string, args ...interface{}) ([]models.Student, error) {
	students := []models.Student{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &students, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return students, nil
}

// CountByStatus counts students with the given status.
func (r *StudentRepository) CountByStatus(ctx context.Context, status models.StudentStatus) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &count, "SELECT COUNT(*) FROM students WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count students by status: %w", err)
	}
	return count, nil
}

// CountByDepartment counts students of a department.
func (r *StudentRepository) CountByDepartment(ctx context.Context, department string) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &count, "SELECT COUNT(*) FROM students WHERE department = $1", department); err != nil {
		return 0, fmt.Errorf("count students by department: %w", err)
	}
	return count, nil
}

// Departments lists distinct non-null departments alphabetically.
func (r *StudentRepository) Departments(ctx context.Context) ([]string, error) {
	departments := []string{}
	const query = `SELECT DISTINCT department FROM students WHERE department IS NOT NULL ORDER BY department`
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// Create inserts a student; id and timestamps are assigned by the database.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (student_id, first_name, last_name, email, phone, date_of_birth, address, department, year_of_study, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	row := executor(ctx, r.db).QueryRowxContext(ctx, query,
		student.StudentID, student.FirstName, student.LastName, student.Email, student.Phone,
		student.DateOfBirth, student.Address, student.Department, student.YearOfStudy, student.Status)
	if err := row.Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		if mapped := studentWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update overwrites the mutable profile fields. Status and student id are left untouched.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = $2, last_name = $3, email = $4, phone = $5, date_of_birth = $6,
        address = $7, department = $8, year_of_study = $9, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`
	row := executor(ctx, r.db).QueryRowxContext(ctx, query,
		student.ID, student.FirstName, student.LastName, student.Email, student.Phone,
		student.DateOfBirth, student.Address, student.Department, student.YearOfStudy)
	if err := row.Scan(&student.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if mapped := studentWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateStatus sets the lifecycle status of a student.
func (r *StudentRepository) UpdateStatus(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &student.UpdatedAt, query, student.ID, student.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update student status: %w", err)
	}
	return nil
}

// Delete removes a student. It reports whether a row was deleted.
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := executor(ctx, r.db).ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	return affected > 0, nil
}

// studentWriteError maps constraint failures of student writes to client errors.
func studentWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err, studentIDIndex):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student id already exists")
	case database.IsUniqueViolation(err, emailIndex):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "email already exists")
	case database.IsUniqueViolation(err, ""):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "student already exists")
	case database.IsValueTooLong(err):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student field exceeds its maximum length")
	}
	return nil
}
