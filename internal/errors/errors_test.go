package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractErrorUnwrap(t *testing.T) {
	underlying := errors.New("syntax error")
	err := NewExtractError("a.py", "python", underlying)

	if !errors.Is(err, underlying) {
		t.Error("Expected Unwrap to expose the underlying error")
	}
	if !strings.Contains(err.Error(), "a.py") || !strings.Contains(err.Error(), "python") {
		t.Errorf("Expected path and language in message, got %q", err.Error())
	}
}

func TestFileErrorPermissionClassification(t *testing.T) {
	err := NewFileError("read", "/secret", errors.New("permission denied"))
	if err.Type != ErrorTypePermission {
		t.Errorf("Expected permission type, got %s", err.Type)
	}

	err = NewFileError("read", "/missing", errors.New("no such file"))
	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected file_not_found type, got %s", err.Type)
	}
}

func TestIndexingErrorWithFile(t *testing.T) {
	err := NewIndexingError("extract", errors.New("boom")).WithFile("b.py")
	if !strings.Contains(err.Error(), "b.py") {
		t.Errorf("Expected file path in message, got %q", err.Error())
	}
}

func TestWatchSentinels(t *testing.T) {
	wrapped := NewWatchError("start", ErrAlreadyWatching)
	if !errors.Is(wrapped, ErrAlreadyWatching) {
		t.Error("Expected sentinel to survive wrapping")
	}
}
