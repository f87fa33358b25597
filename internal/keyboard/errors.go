package keyboard

import (
	"errors"
	"fmt"
)

// Errors returned by keyboard operations.
var (
	// ErrUnknownPosition indicates text that is not an ISO layout position.
	ErrUnknownPosition = errors.New("unknown ISO layout position")

	// ErrUnknownKeycode indicates a platform keycode missing from a keycode map.
	ErrUnknownKeycode = errors.New("unknown keycode")

	// ErrUnknownKeyboard indicates a layout name missing from a keyboard id map.
	ErrUnknownKeyboard = errors.New("unknown keyboard layout")

	// ErrInvalidKeyboardID indicates a malformed keyboard id.
	ErrInvalidKeyboardID = errors.New("invalid keyboard id")

	// ErrUnknownPlatform indicates an unsupported platform name.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrConflictingMapping indicates two different outputs for the same key
	// under the same modifier combination.
	ErrConflictingMapping = errors.New("conflicting character mapping")

	// ErrConflictingTransform indicates two different outputs for the same
	// transform sequence.
	ErrConflictingTransform = errors.New("conflicting transform")

	// ErrNoKeyboardID indicates a builder without keyboard ids.
	ErrNoKeyboardID = errors.New("no keyboard id")

	// ErrNoName indicates a builder without names.
	ErrNoName = errors.New("no keyboard name")

	// ErrInvalidResource indicates a malformed CSV resource.
	ErrInvalidResource = errors.New("invalid resource")
)

// ParseError represents an error while reading a layout source file.
type ParseError struct {
	// Path is the source that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
