package core

import (
	"errors"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// Message returns the first user-facing field message, falling back to the wrapped error.
func (err ValidationError) Message() string {
	if len(err.Fields) > 0 {
		return err.Fields[0].Error
	}
	return err.Error()
}

// IsValidationError reports whether err carries field-level validation details.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// translateValidationErrors converts validator.ValidationErrors into a *ValidationError
// holding the translated message of every failing field.
func translateValidationErrors(err error, translator ut.Translator) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
	}
	return NewValidationError(errors.New("invalid data"), fields...)
}
