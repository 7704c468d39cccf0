package ui

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of error for proper handling
type ErrorType int

const (
	ErrorTypeUserCancelled ErrorType = iota // Ctrl+C, 'q' - silent exit
	ErrorTypeValidation                     // Bad flags or arguments - show error, no usage
	ErrorTypeAPI                            // Log API unreachable or malformed - show error, no usage
	ErrorTypeFileSystem                     // Log file or config file problems - show error, no usage
	ErrorTypeConfiguration                  // Config issues - show error, no usage
	ErrorTypeInternal                       // Unexpected - show error, no usage
)

// UIError defines a structured error type for communication between Bubbletea and Cobra.
// It provides metadata about how the error should be handled and presented to the user.
type UIError struct {
	Err           error
	Type          ErrorType
	SuppressUsage bool // Don't show Cobra usage message
	SilentExit    bool // Don't show error message (already rendered in UI or should be silent)
}

func (e *UIError) Error() string {
	return e.Err.Error()
}

func (e *UIError) Unwrap() error {
	return e.Err
}

// ExitCode is the process exit status for the error: 130 for a user
// cancellation, 1 otherwise
func (e *UIError) ExitCode() int {
	if e.Type == ErrorTypeUserCancelled {
		return 130
	}
	return 1
}

// Constructor helpers

func NewUserCancelledError() *UIError {
	return newUIError(fmt.Errorf("cancelled by user"), ErrorTypeUserCancelled, true)
}

func NewValidationError(err error) *UIError {
	return newUIError(err, ErrorTypeValidation, false)
}

func NewAPIError(err error) *UIError {
	return newUIError(err, ErrorTypeAPI, false)
}

// NewFetchError wraps the reason recorded by a failed log fetch
func NewFetchError(reason string) *UIError {
	return NewAPIError(fmt.Errorf("failed to fetch logs: %s", reason))
}

func NewFileSystemError(err error) *UIError {
	return newUIError(err, ErrorTypeFileSystem, false)
}

func NewConfigurationError(err error) *UIError {
	return newUIError(err, ErrorTypeConfiguration, false)
}

func NewInternalError(err error) *UIError {
	return newUIError(err, ErrorTypeInternal, false)
}

func newUIError(err error, typ ErrorType, silent bool) *UIError {
	return &UIError{
		Err:           err,
		Type:          typ,
		SuppressUsage: true,
		SilentExit:    silent,
	}
}

// AsUIError unwraps err to a *UIError if it holds one
func AsUIError(err error) (*UIError, bool) {
	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr, true
	}
	return nil, false
}

// FormatError formats an error message with styling
// NOTE: Adds a new line manually. Use strings.TrimSpace if you want to strip it.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	// The last line written before a Bubbletea program exits can be overwritten
	// in some terminals (charmbracelet/bubbletea#304), so end with a newline.
	return ErrorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())) + "\n"
}
