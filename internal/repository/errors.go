package repository

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// translate maps gorm's sentinel errors onto the service error kinds and
// annotates everything else with the failing operation.
func translate(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return pkgerrors.Wrap(err, op)
}
