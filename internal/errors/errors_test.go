package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMissingInput, "test error message")

	if err.Code != ErrCodeMissingInput {
		t.Errorf("expected code %s, got %s", ErrCodeMissingInput, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("exec: \"bash\": executable file not found in $PATH")
	err := Wrap(ErrCodeProcessLaunch, "failed to launch", cause)

	if err.Code != ErrCodeProcessLaunch {
		t.Errorf("expected code %s, got %s", ErrCodeProcessLaunch, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *RelengError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "missing input",
			err:      NewMissingInputError("IIB URL"),
			wantCode: "RELENG-001",
			wantMsg:  "IIB URL was not supplied",
		},
		{
			name:     "malformed output",
			err:      NewMalformedOutputError("A:1"),
			wantCode: "RELENG-002",
			wantMsg:  `"A:1"`,
		},
		{
			name:     "launch failure with cause",
			err:      NewProcessLaunchError([]string{"bash", "scripts/iib.sh"}, fmt.Errorf("permission denied")),
			wantCode: "RELENG-004",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			if !strings.Contains(msg, tt.wantCode) {
				t.Errorf("error %q does not contain code %s", msg, tt.wantCode)
			}
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error %q does not contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestSuggestionsRendered(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "bad").WithSuggestions("first", "second")
	msg := err.Error()

	if !strings.Contains(msg, "Suggestions:") {
		t.Fatalf("expected suggestions header in %q", msg)
	}
	if !strings.Contains(msg, "• first") || !strings.Contains(msg, "• second") {
		t.Errorf("expected both suggestions in %q", msg)
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	base := NewEmptyResultError("IIB stage")
	wrapped := fmt.Errorf("resolve bundle: %w", base)

	if !IsCode(wrapped, ErrCodeEmptyResult) {
		t.Errorf("IsCode should see through fmt.Errorf wrapping")
	}
	if IsCode(wrapped, ErrCodeMissingInput) {
		t.Errorf("IsCode matched the wrong code")
	}
	if _, ok := CodeOf(errors.New("plain")); ok {
		t.Errorf("CodeOf should report false for plain errors")
	}
}
