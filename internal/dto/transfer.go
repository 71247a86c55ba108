package dto

// ImportRowError explains why a spreadsheet row was not imported.
type ImportRowError struct {
	Row       int    `json:"row"`
	StudentID string `json:"studentId,omitempty"`
	Message   string `json:"message"`
}

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
