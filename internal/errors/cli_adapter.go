package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var le *LoadErrors
	if errors.As(err, &le) {
		return 11
	}

	if be, ok := err.(*BuildError); ok {
		return a.exitCodeFromBuildError(be)
	}

	return 1
}

// exitCodeFromBuildError maps BuildError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromBuildError(err *BuildError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryParse, CategoryLoad, CategoryRender, CategoryWrite:
		return 11 // Build error
	case CategoryRuntime:
		return 12 // Runtime error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
//
// Aggregated load errors are expanded so every broken file prints with its
// path in a single pass.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var le *LoadErrors
	if errors.As(err, &le) {
		return le.Error()
	}

	if be, ok := err.(*BuildError); ok {
		return a.formatBuildError(be)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatBuildError formats a BuildError for display.
func (a *CLIErrorAdapter) formatBuildError(err *BuildError) string {
	if a.verbose {
		return err.Error()
	}

	msg := err.Message
	if ctx := err.contextSuffix(); ctx != "" {
		msg += " " + ctx
	}
	switch err.Category {
	case CategoryConfig, CategoryValidation:
		return msg
	default:
		if err.Cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, err.Cause)
		}
		return fmt.Sprintf("%s: %s", err.Category, msg)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if be, ok := err.(*BuildError); ok {
		return be.Category == CategoryInternal ||
			be.Category == CategoryRuntime ||
			be.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if be, ok := err.(*BuildError); ok {
		level := slog.LevelError
		if be.Severity == SeverityWarning {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("category", string(be.Category)),
		}
		a.logger.LogAttrs(nil, level, be.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}
