package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "payload too large sentinel",
			err:      fmt.Errorf("submit: %w", ErrPayloadTooLarge),
			wantCode: "FILE001",
		},
		{
			name:     "unsupported type sentinel",
			err:      fmt.Errorf("detect %q: %w", "a.xlsx", ErrUnsupportedFileType),
			wantCode: "FILE002",
		},
		{
			name:     "decode error wins over generic parse",
			err:      fmt.Errorf("read: %w", ErrDecode),
			wantCode: "FILE003",
		},
		{
			name:     "malformed document wins over generic parse",
			err:      fmt.Errorf("json: %w", ErrMalformedDocument),
			wantCode: "FILE006",
		},
		{
			name:     "generic parse error",
			err:      fmt.Errorf("csv: %w", ErrParse),
			wantCode: "PARSE001",
		},
		{
			name:     "not found sentinel",
			err:      ErrNotFound,
			wantCode: "JOB001",
		},
		{
			name:     "invalid status filter",
			err:      fmt.Errorf("%w: %q", ErrInvalidStatus, "done"),
			wantCode: "JOB002",
		},
		{
			name:     "pattern fallback for stored text",
			err:      errors.New("parse error: malformed document: unexpected end of input"),
			wantCode: "FILE006",
		},
		{
			name:     "case insensitive pattern",
			err:      errors.New("RATE LIMIT exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestParseSentinelsWrapErrParse(t *testing.T) {
	for _, err := range []error{ErrDecode, ErrMalformedDocument} {
		if !errors.Is(err, ErrParse) {
			t.Errorf("errors.Is(%v, ErrParse) = false, want true", err)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyFile)

	expected := "The uploaded file is empty (Code: FILE005). Upload a file with content"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrNotFound, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
