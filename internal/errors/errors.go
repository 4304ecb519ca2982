package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/storage"
	"github.com/julianstephens/skinlog/internal/utils"
)

// Kind classifies an error by how it should surface to the user.
type Kind int

const (
	// KindWrite is a failed store write: shown as a non-fatal alert.
	KindWrite Kind = iota
	// KindInvalidDate is a day-boundary failure: silently ignored.
	KindInvalidDate
	// KindNotFound is a dangling reference: logged and ignored.
	KindNotFound
)

// Classify maps an error to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, utils.ErrInvalidDate):
		return KindInvalidDate
	case errors.Is(err, storage.ErrNotFound):
		return KindNotFound
	default:
		return KindWrite
	}
}

// Alert returns the message to show for err, or "" when err should not
// interrupt the user. Suppressed errors are logged.
func Alert(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case KindInvalidDate:
		logger.Debug("Ignoring invalid date", "error", err)
		return ""
	case KindNotFound:
		logger.Warn("Referenced entity not found", "error", err)
		return ""
	default:
		logger.Error("Write failed", "error", err)
		return Format(err)
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
