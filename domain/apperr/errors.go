// Package apperr defines the error kinds shared by every module.
//
// The text of each sentinel doubles as its wire code. Errors returned through
// mono request-reply services lose their type and arrive as plain strings,
// so KindOf falls back to matching the code inside the message and
// FromMessage restores the sentinel from it.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidReference   = errors.New("invalid_reference")
	ErrInvalidIdentifier  = errors.New("invalid_identifier")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidAsset       = errors.New("invalid_asset")
	ErrMissingAsset       = errors.New("missing_asset")
	ErrInvalidArgument    = errors.New("invalid_argument")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrUnavailable        = errors.New("unavailable")
	ErrPersistence        = errors.New("persistence_failure")
)

var kinds = []error{
	ErrNotFound,
	ErrInvalidReference,
	ErrInvalidIdentifier,
	ErrInvalidCredentials,
	ErrInvalidAsset,
	ErrMissingAsset,
	ErrInvalidArgument,
	ErrConflict,
	ErrUnauthorized,
	ErrForbidden,
	ErrUnavailable,
	ErrPersistence,
}

// KindOf returns the sentinel that classifies err, or nil when err carries
// none of the known codes. For flattened errors the leftmost code wins, since
// anything after it may be caller-supplied text.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	kind, _ := locate(err.Error())
	return kind
}

// Message extracts the human readable part that follows the error code.
// It returns an empty string when err has no known code.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	kind, idx := locate(msg)
	if kind == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(msg[idx+len(kind.Error()):], ":"))
}

// FromMessage rebuilds a classified error from the text of a remote error,
// so that errors.Is works again on the calling side.
func FromMessage(msg string) error {
	kind, idx := locate(msg)
	if kind == nil {
		return errors.New(msg)
	}
	rest := strings.TrimSpace(strings.TrimPrefix(msg[idx+len(kind.Error()):], ":"))
	if rest == "" {
		return kind
	}
	return fmt.Errorf("%w: %s", kind, rest)
}

// locate finds the leftmost code in msg that is followed by ':' or ends it.
func locate(msg string) (error, int) {
	var (
		found error
		at    = -1
	)
	for _, kind := range kinds {
		code := kind.Error()
		idx := strings.Index(msg, code+":")
		if idx < 0 && strings.HasSuffix(msg, code) {
			idx = len(msg) - len(code)
		}
		if idx >= 0 && (at < 0 || idx < at) {
			found, at = kind, idx
		}
	}
	return found, at
}
