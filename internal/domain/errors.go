package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a rejected request parameter.
	ErrValidation = errors.New("validation failed")
	// ErrUnsupportedLanguage signals a language outside the configured set.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrInvalidDate signals a date parameter that does not parse.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidStatus signals a documents status other than busy or ready.
	ErrInvalidStatus = errors.New("invalid documents status")
	// ErrMalformedStatus signals an unreadable control record.
	ErrMalformedStatus = errors.New("malformed control record")
	// ErrServiceUnavailable signals a misconfigured or unreachable backend.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrDocumentsBusy signals that the document store is being reloaded.
	ErrDocumentsBusy = errors.New("document store busy")
)

// UnsupportedLanguageError names the rejected language.
type UnsupportedLanguageError struct {
	Language  string
	Supported []string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("%s: %q (supported: %v)", ErrUnsupportedLanguage.Error(), e.Language, e.Supported)
}

func (e *UnsupportedLanguageError) Unwrap() []error {
	return []error{ErrUnsupportedLanguage, ErrValidation}
}
