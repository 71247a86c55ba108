package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-service/internal/dto"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
	"github.com/noah-isme/student-service/pkg/export"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var exportHeaders = []string{"Student ID", "First Name", "Last Name", "Email", "Phone", "Department", "Year", "Status"}

// Spreadsheet import columns, in order.
const (
	colStudentID = iota
	colFirstName
	colLastName
	colEmail
	colPhone
	colDepartment
	colYearOfStudy
)

type studentRoster interface {
	ListAll(ctx context.Context) ([]dto.StudentDTO, error)
	Create(ctx context.Context, req dto.StudentDTO) (*dto.StudentDTO, error)
}

// TransferService exports the roster and imports students from spreadsheets.
type TransferService struct {
	students  studentRoster
	renderers map[string]export.Renderer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewTransferService constructs the transfer service.
func NewTransferService(students studentRoster, metrics *MetricsService, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		students: students,
		renderers: map[string]export.Renderer{
			FormatCSV:  export.NewCSVExporter(),
			FormatXLSX: export.NewXLSXExporter(),
			FormatPDF:  export.NewPDFExporter(),
		},
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Export renders every student in the requested format. An empty format means CSV.
func (s *TransferService) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Title: "Students", Headers: exportHeaders, Rows: make([]map[string]string, 0, len(students))}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID": st.StudentID,
			"First Name": st.FirstName,
			"Last Name":  st.LastName,
			"Email":      st.Email,
			"Phone":      deref(st.Phone),
			"Department": deref(st.Department),
			"Year":       intString(st.YearOfStudy),
			"Status":     string(st.Status),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	s.logger.Info("students exported", zap.String("format", format), zap.Int("rows", len(students)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("students-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// Import creates one student per spreadsheet row after the header. Rows that
// fail validation or uniqueness are reported and skipped.
func (s *TransferService) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	rows, err := export.ReadXLSXRows(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable spreadsheet")
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		rowNum := i + 1

		req, err := studentFromRow(row)
		if err == nil {
			_, err = s.students.Create(ctx, req)
		}
		if err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Status >= http.StatusInternalServerError {
				return nil, err
			}
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNum, StudentID: req.StudentID, Message: appErr.Message})
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.metrics.RecordMutation(MutationImport)
	}
	s.logger.Info("students imported", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func studentFromRow(row []string) (dto.StudentDTO, error) {
	req := dto.StudentDTO{
		StudentID:  cell(row, colStudentID),
		FirstName:  cell(row, colFirstName),
		LastName:   cell(row, colLastName),
		Email:      cell(row, colEmail),
		Phone:      optional(cell(row, colPhone)),
		Department: optional(cell(row, colDepartment)),
	}
	if raw := cell(row, colYearOfStudy); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year of study %q is not a number", raw))
		}
		req.YearOfStudy = &year
	}
	return req, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
