// Package apperrors tests verify the loader error types, their Error()
// messages, Is() matching semantics and compatibility with errors.Is()
// through fmt.Errorf wrapping.
package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// ErrInvalidRow
// ---------------------------------------------------------------------------

func TestErrInvalidRow_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrInvalidRow
		expected string
	}{
		{
			name:     "with column",
			err:      NewInvalidRowError(7, "tmdbId", "abc", "not an integer"),
			expected: `line 7: column tmdbId value "abc": not an integer`,
		},
		{
			name:     "without column",
			err:      &ErrInvalidRow{Line: 3, Reason: "expected 3 fields, got 2"},
			expected: "line 3: expected 3 fields, got 2",
		},
		{
			name:     "empty value",
			err:      NewInvalidRowError(12, "imdbId", "", "empty value"),
			expected: `line 12: column imdbId value "": empty value`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrInvalidRow_Is(t *testing.T) {
	t.Parallel()
	err := NewInvalidRowError(2, "movieId", "x", "not an integer")

	t.Run("matches another ErrInvalidRow", func(t *testing.T) {
		if !errors.Is(err, &ErrInvalidRow{}) {
			t.Error("expected errors.Is to match *ErrInvalidRow")
		}
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("parse: %w", err)
		if !errors.Is(wrapped, &ErrInvalidRow{}) {
			t.Error("expected wrapped error to match *ErrInvalidRow")
		}
	})

	t.Run("does not match ErrDuplicateLink", func(t *testing.T) {
		if errors.Is(err, &ErrDuplicateLink{}) {
			t.Error("expected errors.Is not to match *ErrDuplicateLink")
		}
	})

	t.Run("errors.As extracts the line", func(t *testing.T) {
		var target *ErrInvalidRow
		if !errors.As(fmt.Errorf("wrap: %w", err), &target) {
			t.Fatal("expected errors.As to succeed")
		}
		if target.Line != 2 {
			t.Errorf("Line = %d, want 2", target.Line)
		}
	})
}

// ---------------------------------------------------------------------------
// ErrDuplicateLink
// ---------------------------------------------------------------------------

func TestErrDuplicateLink(t *testing.T) {
	t.Parallel()
	err := &ErrDuplicateLink{ID: 862}

	if got, want := err.Error(), "link with movie ID 862 already exists"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(fmt.Errorf("insert: %w", err), &ErrDuplicateLink{}) {
		t.Error("expected wrapped error to match *ErrDuplicateLink")
	}
	if errors.Is(err, &ErrInvalidRow{}) {
		t.Error("expected errors.Is not to match *ErrInvalidRow")
	}
}

// ---------------------------------------------------------------------------
// ErrUnsupportedSource
// ---------------------------------------------------------------------------

func TestErrUnsupportedSource(t *testing.T) {
	t.Parallel()
	err := &ErrUnsupportedSource{Path: "ml-latest.zip", Reason: `entry "links.csv" not found`}

	if got, want := err.Error(), `unsupported source ml-latest.zip: entry "links.csv" not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, &ErrUnsupportedSource{}) {
		t.Error("expected errors.Is to match *ErrUnsupportedSource")
	}
	if errors.Is(err, &ErrHeader{}) {
		t.Error("expected errors.Is not to match *ErrHeader")
	}
}

// ---------------------------------------------------------------------------
// ErrHeader
// ---------------------------------------------------------------------------

func TestErrHeader_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrHeader
		expected string
	}{
		{name: "missing", err: &ErrHeader{}, expected: "missing header row"},
		{name: "partial", err: &ErrHeader{Got: []string{"movieId", "foo"}}, expected: `unusable header row ["movieId" "foo"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ErrTooManyErrors
// ---------------------------------------------------------------------------

func TestErrTooManyErrors(t *testing.T) {
	t.Parallel()
	err := &ErrTooManyErrors{Failed: 5, Processed: 20, Ratio: 0.1}

	if got, want := err.Error(), "too many errors: 5 of 20 rows failed (limit 0.10)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(fmt.Errorf("import: %w", err), &ErrTooManyErrors{}) {
		t.Error("expected wrapped error to match *ErrTooManyErrors")
	}
}
