package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/student-service/pkg/errors"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func newTransferFixture(t *testing.T) (*TransferService, *studentFixture) {
	t.Helper()
	f := newStudentFixture(t)
	svc := NewTransferService(f.svc, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return svc, f
}

func TestTransferServiceExportCSV(t *testing.T) {
	svc, f := newTransferFixture(t)
	_, err := f.svc.Create(context.Background(), adaPayload())
	require.NoError(t, err)

	file, err := svc.Export(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "students-20240506-070809.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Student ID,First Name,Last Name,Email,Phone,Department,Year,Status", strings.TrimSpace(lines[0]))
	assert.Equal(t, "S100,Ada,Lovelace,ada@x.org,+12345678901,Math,2,ACTIVE", strings.TrimSpace(lines[1]))
}

func TestTransferServiceExportBinaryFormats(t *testing.T) {
	svc, f := newTransferFixture(t)
	_, err := f.svc.Create(context.Background(), adaPayload())
	require.NoError(t, err)

	xlsx, err := svc.Export(context.Background(), "XLSX")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(xlsx.Filename, ".xlsx"))
	assert.True(t, bytes.HasPrefix(xlsx.Body, []byte("PK")))

	pdf, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	_, err = svc.Export(context.Background(), "docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTransferServiceImport(t *testing.T) {
	svc, f := newTransferFixture(t)
	_, err := f.svc.Create(context.Background(), adaPayload())
	require.NoError(t, err)

	buf := workbook(t, [][]interface{}{
		{"Student ID", "First Name", "Last Name", "Email", "Phone", "Department", "Year of Study"},
		{"S200", "Grace", "Hopper", "grace@x.org", "", "CS", "3"},
		{"S100", "Ada", "Again", "ada2@x.org"},
		{"S300", "Alan", "Turing", "not-an-email"},
		{"S400", "Edsger", "Dijkstra", "ed@x.org", "", "", "three"},
		{},
		{"S500", "Barbara", "Liskov", "barbara@x.org", "+441234567890"},
	})

	result, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "S100", result.Errors[0].StudentID)
	assert.Contains(t, result.Errors[1].Message, "email")
	assert.Contains(t, result.Errors[2].Message, "three")

	grace, found, err := f.svc.GetByStudentID(context.Background(), "S200")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, *grace.YearOfStudy)
	assert.Nil(t, grace.Phone)
}

func TestTransferServiceImportRejectsGarbage(t *testing.T) {
	svc, _ := newTransferFixture(t)

	_, err := svc.Import(context.Background(), strings.NewReader("definitely not a workbook"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTransferServiceImportReportsOverlongRows(t *testing.T) {
	svc, f := newTransferFixture(t)

	buf := workbook(t, [][]interface{}{
		{"Student ID", "First Name", "Last Name", "Email", "Phone", "Department", "Year of Study"},
		{"S200", "Grace", "Hopper", "grace@x.org"},
		{strings.Repeat("S", 25), strings.Repeat("a", 80), "Long", "long@x.org", "", strings.Repeat("D", 70)},
		{"S300", "Alan", "Turing", "alan@x.org"},
	})

	result, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	for _, field := range []string{"studentId", "firstName", "department"} {
		assert.Contains(t, result.Errors[0].Message, field)
	}

	_, found, err := f.svc.GetByStudentID(context.Background(), "S300")
	require.NoError(t, err)
	assert.True(t, found)
}
