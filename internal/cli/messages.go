package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fsrkeeper/internal/auth"
	"github.com/dmitrijs2005/fsrkeeper/internal/common"
)

// userMessage turns err into the line shown at the prompt.
func userMessage(err error) string {
	var te *auth.ThrottledError
	var ue usageError
	switch {
	case errors.As(err, &te):
		return fmt.Sprintf("Too many attempts. Try again after %s.", te.RetryAt.Local().Format("15:04:05"))
	case errors.Is(err, auth.ErrNotFound):
		return "No account with that email on this device."
	case errors.Is(err, auth.ErrInvalidPin):
		return "Wrong PIN."
	case errors.Is(err, auth.ErrDuplicateEmail):
		return "An account with that email already exists."
	case errors.Is(err, auth.ErrInvalidInput):
		return "Enter a valid email and a PIN of 4 to 12 digits."
	case errors.Is(err, auth.ErrLockedUserMismatch):
		return "The device is locked. Only the locked account can unlock it; use 'logout' to switch."
	case errors.Is(err, auth.ErrInvalidState):
		return "Not possible right now."
	case errors.Is(err, errNotSignedIn), errors.Is(err, errNoOpenReport), errors.As(err, &ue):
		return err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return "Not found."
	}
	return "Error: " + err.Error()
}
