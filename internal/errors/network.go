// Package errors provides error types for shears.
// This file contains self-update and cancellation-related errors.
package errors

import (
	"fmt"
)

// UpdateCheckFailed creates an error for a failed release lookup.
func UpdateCheckFailed(cause error) *ShearsError {
	return &ShearsError{
		Kind:    ErrNetwork,
		Message: "could not check for newer releases",
		Cause:   cause,
		Suggestion: `Releases are looked up on api.github.com. Verify the machine can
reach it (curl -I https://api.github.com), and set HTTPS_PROXY if a
proxy sits in between. Offline use works fine, just without update
notices.`,
	}
}

// InstallFailed creates an error for a binary swap the filesystem refused.
func InstallFailed(cause error, path string) *ShearsError {
	return &ShearsError{
		Kind:    ErrPermission,
		Message: "could not replace the shears binary",
		Cause:   cause,
		Details: map[string]string{
			"path": path,
		},
		Suggestion: `The binary lives in a directory you cannot write to. Re-run with
elevated permissions:
  sudo shears update --yes`,
	}
}

// ContextCancelled creates an error for interrupted operations.
func ContextCancelled(operation string) *ShearsError {
	return &ShearsError{
		Kind:    ErrTimeout,
		Message: fmt.Sprintf("%s was cancelled", operation),
		Details: map[string]string{
			"operation": operation,
		},
		Suggestion: `The operation was interrupted before it finished.

Deletions already performed are not rolled back; review with:
  git status

Then either restore (git checkout -- <path>) or re-run shears to finish.`,
	}
}
