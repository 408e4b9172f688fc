package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrArtikelNotFound = errors.New("artikel not found")

// ValidationError reports the first violated invariant of an Artikel.
type ValidationError struct {
	Feld    string
	Meldung string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("artikel invalid: %s %s", e.Feld, e.Meldung)
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "must not be empty"
	case "min":
		msg = "must not be negative"
	case "gtefield":
		msg = "must be greater than or equal to " + fe.Param()
	default:
		msg = "failed rule " + fe.Tag()
	}
	return &ValidationError{Feld: fe.Field(), Meldung: msg}
}
