package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation   = "23505"
	stringDataTooLong = "22001"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation,
// optionally restricted to one constraint or index name.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsValueTooLong reports whether err is a PostgreSQL string_data_right_truncation.
func IsValueTooLong(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == stringDataTooLong
}
