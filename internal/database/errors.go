package database

import (
	"strings"
)

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err came from a FOREIGN KEY constraint.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err came from a CHECK constraint.
func IsCheckViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}
