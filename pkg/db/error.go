package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation.
// TranslateError normalizes this to gorm.ErrDuplicatedKey on most paths,
// but raw Exec inserts still surface the driver message, so the known
// message shapes are matched as a fallback.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		return true // postgres, SQLSTATE 23505
	case strings.Contains(msg, "Error 1062"):
		return true // mysql ER_DUP_ENTRY
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return true // sqlite
	}
	return false
}
