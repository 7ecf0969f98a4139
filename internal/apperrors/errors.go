package apperrors

import "fmt"

// ErrInvalidRow represents a CSV row that does not yield three integer identifiers.
type ErrInvalidRow struct {
	Line   int
	Column string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidRow) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: column %s value %q: %s", e.Line, e.Column, e.Value, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidRow) Is(target error) bool {
	_, ok := target.(*ErrInvalidRow)
	return ok
}

// NewInvalidRowError creates a new ErrInvalidRow for a single column.
func NewInvalidRowError(line int, column, value, reason string) *ErrInvalidRow {
	return &ErrInvalidRow{
		Line:   line,
		Column: column,
		Value:  value,
		Reason: reason,
	}
}

// ErrDuplicateLink is returned when a movie id already exists in the destination table.
type ErrDuplicateLink struct {
	ID int64
}

// Error implements the error interface.
func (e *ErrDuplicateLink) Error() string {
	return fmt.Sprintf("link with movie ID %d already exists", e.ID)
}

// Is allows for error checking with errors.Is().
func (e *ErrDuplicateLink) Is(target error) bool {
	_, ok := target.(*ErrDuplicateLink)
	return ok
}

// ErrUnsupportedSource is returned when an input cannot be opened as a links CSV.
type ErrUnsupportedSource struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *ErrUnsupportedSource) Error() string {
	return fmt.Sprintf("unsupported source %s: %s", e.Path, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnsupportedSource) Is(target error) bool {
	_, ok := target.(*ErrUnsupportedSource)
	return ok
}

// ErrHeader is returned when the header row is missing or only partially recognised.
type ErrHeader struct {
	Got []string
}

// Error implements the error interface.
func (e *ErrHeader) Error() string {
	if len(e.Got) == 0 {
		return "missing header row"
	}
	return fmt.Sprintf("unusable header row %q", e.Got)
}

// Is allows for error checking with errors.Is().
func (e *ErrHeader) Is(target error) bool {
	_, ok := target.(*ErrHeader)
	return ok
}

// ErrTooManyErrors aborts an import once the share of bad rows passes the configured ratio.
type ErrTooManyErrors struct {
	Failed    int
	Processed int
	Ratio     float64
}

// Error implements the error interface.
func (e *ErrTooManyErrors) Error() string {
	return fmt.Sprintf("too many errors: %d of %d rows failed (limit %.2f)", e.Failed, e.Processed, e.Ratio)
}

// Is allows for error checking with errors.Is().
func (e *ErrTooManyErrors) Is(target error) bool {
	_, ok := target.(*ErrTooManyErrors)
	return ok
}
