package repository

import (
	"errors"
	"tabulator/app_error"

	"gorm.io/gorm"
)

// notFound turns gorm's ErrRecordNotFound into a classified NotFound error and
// passes every other error through untouched.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return app_error.NotFound(format, args...)
	}
	return err
}
