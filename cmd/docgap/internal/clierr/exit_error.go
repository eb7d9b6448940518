// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"

	"github.com/nexical/docgap/internal/errkind"
)

// Process exit codes.
const (
	CodeOK = 0
	// CodeDrift: drift found in strict mode, or coverage below the threshold.
	CodeDrift = 1
	// CodeUsage: invalid configuration, pattern or command line.
	CodeUsage = 2
	// CodeNotARepository: the project root is not inside a git work tree.
	CodeNotARepository = 3
	// CodeFailure: history, read or normalizer failure.
	CodeFailure = 4
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Newf is a formatted variant.
func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Classify wraps err with the exit code its error kind maps to.
// Errors that already carry a code are returned unchanged.
func Classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return Wrap(CodeOf(err), msg, err)
}

// CodeOf maps an error kind to an exit code.
func CodeOf(err error) int {
	switch errkind.KindOf(err) {
	case errkind.InvalidConfig, errkind.InvalidPattern:
		return CodeUsage
	case errkind.NotARepository:
		return CodeNotARepository
	case errkind.HistoryFetchFailed, errkind.ReadFailed, errkind.NormalizeFailed:
		return CodeFailure
	}
	return CodeFailure
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return CodeOK
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

func normalize(code int) int {
	// Exit code 0 means success; errors should never be 0.
	if code <= 0 {
		return 1
	}
	return code
}
