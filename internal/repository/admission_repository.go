package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/student-service/internal/models"
)

const admissionColumns = `id, student_id, admission_year, program, admission_date, admission_status, entrance_score, remarks, created_at`

// AdmissionRepository manages persistence for admissions.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository constructs an AdmissionRepository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// Create inserts an admission. A nil admission date takes the column default.
func (r *AdmissionRepository) Create(ctx context.Context, admission *models.Admission) error {
	const query = `INSERT INTO admissions (student_id, admission_year, program, admission_date, admission_status, entrance_score, remarks)
        VALUES ($1, $2, $3, COALESCE($4, CURRENT_DATE), $5, $6, $7)
        RETURNING id, admission_date, created_at`
	row := executor(ctx, r.db).QueryRowxContext(ctx, query,
		admission.StudentID, admission.AdmissionYear, admission.Program, admission.AdmissionDate,
		admission.AdmissionStatus, admission.EntranceScore, admission.Remarks)
	var date models.Date
	if err := row.Scan(&admission.ID, &date, &admission.CreatedAt); err != nil {
		return fmt.Errorf("create admission: %w", err)
	}
	admission.AdmissionDate = &date
	return nil
}

// ListByStudent returns the admissions of one student, oldest first.
func (r *AdmissionRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Admission, error) {
	return r.selectMany(ctx, "list admissions by student",
		"SELECT "+admissionColumns+" FROM admissions WHERE student_id = $1 ORDER BY id", studentID)
}

// ListByStudentIDs batch loads the admissions of several students.
func (r *AdmissionRepository) ListByStudentIDs(ctx context.Context, studentIDs []int64) ([]models.Admission, error) {
	if len(studentIDs) == 0 {
		return []models.Admission{}, nil
	}
	return r.selectMany(ctx, "list admissions by students",
		"SELECT "+admissionColumns+" FROM admissions WHERE student_id = ANY($1) ORDER BY student_id, id", pq.Array(studentIDs))
}

// ListByStudentNumber returns the admissions of the student holding the external student id.
func (r *AdmissionRepository) ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.Admission, error) {
	const query = `SELECT a.id, a.student_id, a.admission_year, a.program, a.admission_date, a.admission_status, a.entrance_score, a.remarks, a.created_at
        FROM admissions a JOIN students s ON s.id = a.student_id
        WHERE s.student_id = $1 ORDER BY a.id`
	return r.selectMany(ctx, "list admissions by student number", query, studentNumber)
}

// List returns admissions narrowed by the non-zero filter fields.
func (r *AdmissionRepository) List(ctx context.Context, filter models.AdmissionFilter) ([]models.Admission, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("admission_status = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("admission_year = $%d", len(args)))
	}
	if program := strings.TrimSpace(filter.Program); program != "" {
		args = append(args, program)
		conditions = append(conditions, fmt.Sprintf("program = $%d", len(args)))
	}

	query := "SELECT " + admissionColumns + " FROM admissions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"
	return r.selectMany(ctx, "list admissions", query, args...)
}

func (r *AdmissionRepository) selectMany(ctx context.Context, op, query string, args ...interface{}) ([]models.Admission, error) {
	admissions := []models.Admission{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &admissions, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return admissions, nil
}

// CountByStatus counts admissions in the given status.
func (r *AdmissionRepository) CountByStatus(ctx context.Context, status models.AdmissionStatus) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &count, "SELECT COUNT(*) FROM admissions WHERE admission_status = $1", status); err != nil {
		return 0, fmt.Errorf("count admissions by status: %w", err)
	}
	return count, nil
}

// CountByYear counts admissions for an admission year.
func (r *AdmissionRepository) CountByYear(ctx context.Context, year int) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &count, "SELECT COUNT(*) FROM admissions WHERE admission_year = $1", year); err != nil {
		return 0, fmt.Errorf("count admissions by year: %w", err)
	}
	return count, nil
}

// Programs lists distinct program names alphabetically.
func (r *AdmissionRepository) Programs(ctx context.Context) ([]string, error) {
	programs := []string{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &programs, "SELECT DISTINCT program FROM admissions ORDER BY program"); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// DeleteByStudent removes every admission of a student and returns how many were removed.
func (r *AdmissionRepository) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	res, err := executor(ctx, r.db).ExecContext(ctx, "DELETE FROM admissions WHERE student_id = $1", studentID)
	if err != nil {
		return 0, fmt.Errorf("delete admissions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete admissions: %w", err)
	}
	return affected, nil
}
