package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-service/internal/dto"
	appErrors "github.com/noah-isme/student-service/pkg/errors"
	"github.com/noah-isme/student-service/pkg/response"
)

const importField = "file"

type transferService interface {
	Export(ctx context.Context, format string) (*dto.ExportFile, error)
	Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

// TransferHandler exposes roster export and spreadsheet import.
type TransferHandler struct {
	transfers transferService
	maxUpload int64
}

// NewTransferHandler constructs TransferHandler. maxUpload bounds the request body in bytes.
func NewTransferHandler(transfers transferService, maxUpload int64) *TransferHandler {
	return &TransferHandler{transfers: transfers, maxUpload: maxUpload}
}

// Export godoc
// @Summary Download every student
// @Tags Transfer
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /students/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	file, err := h.transfers.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Import godoc
// @Summary Import students from an XLSX workbook
// @Tags Transfer
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook whose first sheet lists Student ID, First Name, Last Name, Email, Phone, Department, Year of Study"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	header, err := c.FormFile(importField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "upload exceeds the size limit"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field \"file\" is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.transfers.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
