// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification in the build pipeline and CLI.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Content errors: per-file front matter and body problems
	CategoryParse ErrorCategory = "parse"
	// Load errors: filesystem failures or aggregated parse failures
	CategoryLoad ErrorCategory = "load"

	// Build and output errors
	CategoryRender ErrorCategory = "render"
	CategoryWrite  ErrorCategory = "write"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity, and context
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface. Context fields render inline so the
// offending file, field, or slug is always part of the message.
func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s", e.Category, e.Severity, e.Message)
	if ctx := e.contextSuffix(); ctx != "" {
		b.WriteString(" ")
		b.WriteString(ctx)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// contextSuffix renders the context fields as a sorted [key=value ...] block.
func (e *BuildError) contextSuffix() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := err.(*BuildError); ok {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildError
func GetCategory(err error) ErrorCategory {
	if be, ok := err.(*BuildError); ok {
		return be.Category
	}
	return CategoryInternal
}

// LoadErrors aggregates per-file parse/load failures so an author sees every
// broken post in one pass instead of fixing them one build at a time.
type LoadErrors struct {
	Errs []error
}

// Error implements the error interface, listing every collected error.
func (e *LoadErrors) Error() string {
	if len(e.Errs) == 0 {
		return "load: no errors"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "load failed with %d error(s):", len(e.Errs))
	for _, err := range e.Errs {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the aggregated errors to errors.Is/As.
func (e *LoadErrors) Unwrap() []error {
	return e.Errs
}

// Append adds an error to the aggregate, ignoring nil.
func (e *LoadErrors) Append(err error) {
	if err != nil {
		e.Errs = append(e.Errs, err)
	}
}

// OrNil returns nil when no errors were collected, otherwise the aggregate.
func (e *LoadErrors) OrNil() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e
}
