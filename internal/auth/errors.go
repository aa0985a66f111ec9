package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/common"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
)

// User-facing failures. Callers match them with errors.Is and show a message;
// none of them is fatal.
var (
	ErrNotFound       = errors.New("not-found")
	ErrInvalidPin     = errors.New("invalid-pin")
	ErrDuplicateEmail = errors.New("duplicate-email")
	ErrThrottled      = errors.New("throttled")
	ErrInvalidInput   = errors.New("invalid-input")

	ErrLockedUserMismatch = errors.New("session is locked by another user")
	ErrInvalidState       = errors.New("operation not allowed in current session state")
	ErrInvalidToken       = errors.New("invalid session token")
)

// ThrottledError is returned while an email is locked out.
type ThrottledError struct {
	RetryAt time.Time
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled: retry at %s", e.RetryAt.Format(time.RFC3339))
}

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

// Kind maps err to the short error name shown by clients ("not-found",
// "throttled", ...). Environment failures map to "environment", anything else
// to "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrThrottled):
		return ErrThrottled.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrInvalidPin):
		return ErrInvalidPin.Error()
	case errors.Is(err, ErrDuplicateEmail):
		return ErrDuplicateEmail.Error()
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput.Error()
	case errors.Is(err, common.ErrEnvironment), errors.Is(err, storage.ErrNoBackend):
		return "environment"
	}
	return "internal"
}
