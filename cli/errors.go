package cli

import (
	"context"
	"errors"
	"os"

	"github.com/bassamadnan/lumimail/auth"
	"github.com/bassamadnan/lumimail/mailbox"
)

// FormatError converts an error to a human-readable message.
func FormatError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrNoCredentials):
		return "Not signed in - run " + BoldStyle.Render("lumimail login") + " first"
	case errors.Is(err, auth.ErrRefreshFailed), errors.Is(err, auth.ErrUnauthorized):
		return "Gmail rejected the stored credentials - run " + BoldStyle.Render("lumimail login") + " again"
	case errors.Is(err, mailbox.ErrUnknownSection):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	case errors.Is(err, os.ErrNotExist):
		return err.Error() + " - check LUMIMAIL_CREDENTIALS_FILE"
	default:
		return err.Error()
	}
}
