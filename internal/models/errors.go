package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrNotFound ErrorType = iota
	ErrVersionNotFound
	ErrUnsupportedFormat
	ErrMissingHash
	ErrNetwork
	ErrFileOp
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrVersionNotFound:
		return "VersionNotFound"
	case ErrUnsupportedFormat:
		return "UnsupportedFormat"
	case ErrMissingHash:
		return "MissingHash"
	case ErrNetwork:
		return "Network"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// PipelineError represents an error during feedstock creation
type PipelineError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *PipelineError) Unwrap() error {
	return e.Err
}
