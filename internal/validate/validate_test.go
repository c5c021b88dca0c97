package validate

import (
	"errors"
	"net/http"
	"testing"

	"github.com/keyxmakerx/shootcal/internal/apperror"
)

type sample struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Version string `json:"versionNumber" validate:"omitempty,versionnum"`
	Notes   string `json:"notes" validate:"max=5"`
	Kind    string `form:"kind" validate:"omitempty,oneof=travel meeting"`
}

func TestStruct_Messages(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"missing date", sample{}, "date is required"},
		{"bad date", sample{Date: "01/02/2024"}, "date must be a date in YYYY-MM-DD format"},
		{"bad version", sample{Date: "2024-01-02", Version: "v1"}, "versionNumber must look like 1.0 or 2.1.3"},
		{"long notes", sample{Date: "2024-01-02", Notes: "too long"}, "notes must be at most 5 characters"},
		{"form tag name", sample{Date: "2024-01-02", Kind: "party"}, "kind must be one of: travel, meeting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", appErr.Code)
			}
			if appErr.Message != tt.want {
				t.Errorf("got %q, want %q", appErr.Message, tt.want)
			}
		})
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(sample{Date: "2024-01-02", Version: "1.10.2", Notes: "ok"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVersionNumber(t *testing.T) {
	for _, ok := range []string{"1", "1.0", "10.2.3"} {
		if !VersionNumber(ok) {
			t.Errorf("expected %q valid", ok)
		}
	}
	for _, bad := range []string{"", "1.", ".1", "1.a", "v2"} {
		if VersionNumber(bad) {
			t.Errorf("expected %q invalid", bad)
		}
	}
}

func TestDate(t *testing.T) {
	if err := Date("date", "2024-02-29"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "..", "2024-2-1", "2023-02-29"} {
		err := Date("date", bad)
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %v", bad, err)
		}
	}
}
