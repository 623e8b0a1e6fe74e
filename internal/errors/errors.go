package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies errors raised by the indexing subsystem.
type ErrorType string

const (
	ErrorTypeIndexing ErrorType = "indexing"
	ErrorTypeExtract  ErrorType = "extract"
	ErrorTypeSearch   ErrorType = "search"

	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	ErrorTypeConfig ErrorType = "config"
	ErrorTypeWatch  ErrorType = "watch"
)

// Watcher state sentinels. Start/stop are idempotent; callers treat these
// as status, not failure.
var (
	ErrAlreadyWatching = errors.New("file monitoring already active")
	ErrNotWatching     = errors.New("file monitoring not active")
)

// IndexingError represents an error during the indexing process.
type IndexingError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewIndexingError creates a new indexing error with context.
func NewIndexingError(op string, err error) *IndexingError {
	return &IndexingError{
		Type:       ErrorTypeIndexing,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error.
func (e *IndexingError) WithFile(path string) *IndexingError {
	e.FilePath = path
	return e
}

func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error {
	return e.Underlying
}

// ExtractError represents a per-file extraction failure. These are always
// recovered locally: the file is skipped and bulk processing continues.
type ExtractError struct {
	Type       ErrorType
	FilePath   string
	Language   string
	Underlying error
	Timestamp  time.Time
}

// NewExtractError creates a new extraction error.
func NewExtractError(path, language string, err error) *ExtractError {
	return &ExtractError{
		Type:       ErrorTypeExtract,
		FilePath:   path,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s extraction failed for %s: %v", e.Language, e.FilePath, e.Underlying)
}

func (e *ExtractError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// WatchError represents a failure in the file-watching subsystem. The rest of
// the system keeps functioning in manual/auto-index mode when this occurs.
type WatchError struct {
	Type       ErrorType
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewWatchError creates a new watch error.
func NewWatchError(op string, err error) *WatchError {
	return &WatchError{
		Type:       ErrorTypeWatch,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watch %s failed: %v", e.Operation, e.Underlying)
}

func (e *WatchError) Unwrap() error {
	return e.Underlying
}
