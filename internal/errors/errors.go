package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions
var (
	// ErrUsage indicates the command line was invoked incorrectly
	ErrUsage = errors.New("usage error")

	// ErrUnsupportedExtension indicates the input is not a recognised tabular file
	ErrUnsupportedExtension = errors.New("file extension is not recognised")

	// ErrEmptyFile indicates the input file has no header row
	ErrEmptyFile = errors.New("empty file")

	// ErrMissingColumns indicates mandatory column headings are absent
	ErrMissingColumns = errors.New("mandatory column headings missing")

	// ErrMissingValue indicates a mandatory cell is empty
	ErrMissingValue = errors.New("mandatory value missing")

	// ErrInvalidCategory indicates a category token is not an integer
	ErrInvalidCategory = errors.New("invalid category")

	// ErrTransport indicates the request never produced a usable response
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse indicates the service replied with something other than JSON
	ErrMalformedResponse = errors.New("malformed response")
)

// MissingColumnsError lists the mandatory headings absent from a file
type MissingColumnsError struct {
	Columns []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("You must supply all mandatory column headings (missing: %s)", strings.Join(e.Columns, ", "))
}

// Unwrap returns the sentinel for errors.Is
func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// ValidationError reports a mandatory field missing on a 1-based data row
type ValidationError struct {
	Field string
	Row   int
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is missing on row %d", e.Field, e.Row)
}

// Unwrap returns the sentinel for errors.Is
func (e *ValidationError) Unwrap() error {
	return ErrMissingValue
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, row int) *ValidationError {
	return &ValidationError{Field: field, Row: row}
}

// FieldError wraps a failure to structure one cell
type FieldError struct {
	// Field is the column being structured
	Field string

	// Row is the 1-based data row, 0 when unknown
	Row int

	// Value is the offending token
	Value string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s on row %d: %q: %v", e.Field, e.Row, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *FieldError) Unwrap() error {
	return e.Err
}

// UploadError reports a row whose request failed before any response was read.
// Uploaded is the number of rows already sent when the failure happened.
type UploadError struct {
	Row       int
	ProjectID string
	Uploaded  int
	Err       error
}

// Error implements the error interface
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of row %d (project %s) failed after %d row(s) uploaded: %v",
		e.Row, e.ProjectID, e.Uploaded, e.Err)
}

// Unwrap returns the underlying error
func (e *UploadError) Unwrap() error {
	return e.Err
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
