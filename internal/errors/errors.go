// Package errors provides error types with actionable suggestions for
// the shears application. Errors carry enough context for an operator
// to fix the problem without reading source.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds, matched with errors.Is().
var (
	// ErrConfig marks a tool configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrManifest marks a component manifest error.
	ErrManifest = errors.New("manifest error")
	// ErrPath marks a removal target path error.
	ErrPath = errors.New("path error")
	// ErrDepTool marks a dependency tool (scan or remove) failure.
	ErrDepTool = errors.New("dependency tool error")
	// ErrHook marks a hook execution failure.
	ErrHook = errors.New("hook error")
	// ErrNetwork marks a failed network call.
	ErrNetwork = errors.New("network error")
	// ErrTimeout marks a timeout or cancellation.
	ErrTimeout = errors.New("timeout error")
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPermission marks a filesystem permission failure.
	ErrPermission = errors.New("permission error")
	// ErrInternal marks an internal defect.
	ErrInternal = errors.New("internal error")
)

// ShearsError is the error type shears surfaces to operators. Beyond
// the message it can carry the failure category, a fix suggestion, a
// documentation link, and free-form detail pairs.
type ShearsError struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	// Message is the one-line description shown to the user.
	Message string
	// Suggestion tells the user what to do about it.
	Suggestion string
	// DocLink points at the relevant docs page.
	DocLink string
	// Cause is the wrapped error, when there is one.
	Cause error
	// Details holds structured context such as paths and exit codes.
	Details map[string]string
}

// New creates a ShearsError of the given kind.
func New(kind error, message string) *ShearsError {
	return &ShearsError{Kind: kind, Message: message}
}

// Wrap ties an existing error to a kind under a new message.
func Wrap(err error, kind error, message string) *ShearsError {
	return &ShearsError{Kind: kind, Message: message, Cause: err}
}

// Error renders "message" or "message: cause".
func (e *ShearsError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap exposes the cause, or the kind when there is no cause, so
// errors.Is and errors.As see the whole chain.
func (e *ShearsError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is matches against the error's kind, so errors.Is(err, ErrManifest)
// works even when a cause is present.
func (e *ShearsError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// WithCause attaches a cause and returns the error for chaining.
func (e *ShearsError) WithCause(err error) *ShearsError {
	e.Cause = err
	return e
}

// WithDetails adds a detail pair and returns the error for chaining.
func (e *ShearsError) WithDetails(key, value string) *ShearsError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Format renders the full operator-facing message: the error itself,
// sorted details, then the suggestion and documentation link.
func (e *ShearsError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", e.Error())

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, e.Details[k])
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "\n💡 Suggestion: %s\n", e.Suggestion)
	}
	if e.DocLink != "" {
		fmt.Fprintf(&sb, "\n📚 Documentation: %s\n", e.DocLink)
	}

	return sb.String()
}
