// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errkind defines the tagged error kinds surfaced by the drift engine.
// Callers branch on Kind instead of on error identity.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind uint8

const (
	// Unknown is the zero Kind, returned by KindOf for untagged errors.
	Unknown Kind = iota
	// NotARepository means the working directory is not under version control.
	NotARepository
	// HistoryFetchFailed means a commit log query failed for another reason.
	HistoryFetchFailed
	// InvalidPattern means a user-supplied regular expression or glob did not compile.
	InvalidPattern
	// ReadFailed means a working-tree file was missing or unreadable.
	ReadFailed
	// InvalidConfig means the configuration failed schema or semantic validation.
	InvalidConfig
	// NormalizeFailed means a content normalizer strategy could not produce output.
	NormalizeFailed
)

func (k Kind) String() string {
	switch k {
	case NotARepository:
		return "not a repository"
	case HistoryFetchFailed:
		return "history fetch failed"
	case InvalidPattern:
		return "invalid pattern"
	case ReadFailed:
		return "read failed"
	case InvalidConfig:
		return "invalid config"
	case NormalizeFailed:
		return "normalize failed"
	default:
		return "unknown"
	}
}

// Error is a tagged error. It supports wrapping via Unwrap so errors.Is/As work as expected.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "git log".
	Op string
	// Path is the file or pattern involved, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a tagged error.
func E(kind Kind, op, path string, cause error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: cause}
}

// KindOf returns the Kind of the outermost tagged error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
