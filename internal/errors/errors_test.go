package errors

import (
	"errors"
	"strconv"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("Title", 3)

	if got, want := err.Error(), "Title is missing on row 3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrMissingValue) {
		t.Error("errors.Is(err, ErrMissingValue) = false, want true")
	}
}

func TestMissingColumnsError(t *testing.T) {
	err := &MissingColumnsError{Columns: []string{"License", "RDR Project ID"}}

	want := "You must supply all mandatory column headings (missing: License, RDR Project ID)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrMissingColumns) {
		t.Error("Is(err, ErrMissingColumns) = false, want true")
	}
}

func TestFieldError(t *testing.T) {
	_, parseErr := strconv.Atoi("x")

	tests := []struct {
		name string
		err  *FieldError
		want string
	}{
		{
			name: "with row",
			err:  &FieldError{Field: "Categories", Row: 2, Value: "x", Err: parseErr},
			want: `Categories on row 2: "x": ` + parseErr.Error(),
		},
		{
			name: "without row",
			err:  &FieldError{Field: "Categories", Value: "x", Err: parseErr},
			want: `Categories: "x": ` + parseErr.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}

			var numErr *strconv.NumError
			if !As(tt.err, &numErr) {
				t.Error("As(err, *strconv.NumError) = false, want true")
			}
		})
	}
}

func TestUploadError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &UploadError{Row: 2, ProjectID: "200", Uploaded: 1, Err: cause}

	want := "upload of row 2 (project 200) failed after 1 row(s) uploaded: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}
