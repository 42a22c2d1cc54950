// Package cli holds shared command-line plumbing for the juke binary.
package cli

import (
	"errors"
	"fmt"

	"github.com/avlbx/juke/internal/session"
	"github.com/avlbx/juke/pkg/jb"
)

// Exit codes reported by the juke binary.
const (
	ExitOK       = 0
	ExitRuntime  = 1
	ExitUsage    = 2
	ExitAuth     = 3
	ExitNotFound = 4
	ExitBusy     = 5
)

// CLIError carries a user-visible message and exit code.
type CLIError struct {
	Code int
	Msg  string
	Err  error
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// WrapError creates a CLIError with an underlying error.
func WrapError(code int, msg string, err error) *CLIError {
	return &CLIError{Code: code, Msg: msg, Err: err}
}

// ExitCode maps an error to the process exit code. Server API errors and
// a refused command gate get dedicated codes so scripts can react.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	if errors.Is(err, session.ErrBusy) {
		return ExitBusy
	}

	var apiErr *jb.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case jb.ErrCodeAuth, jb.ErrCodeNotAuthorized:
			return ExitAuth
		case jb.ErrCodeNotFound:
			return ExitNotFound
		case jb.ErrCodeParameter:
			return ExitUsage
		}
		return ExitRuntime
	}
	return ExitRuntime
}
