// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Bus
	OpConnect Op = "connect to session bus"
	OpInfo    Op = "query server information"

	// Notifications
	OpSend    Op = "send notification"
	OpClose   Op = "close notification"
	OpDismiss Op = "dismiss notification"
	OpInvoke  Op = "invoke action"
	OpList    Op = "list notifications"
	OpClear   Op = "clear notifications"

	// Settings
	OpDND Op = "change do-not-disturb"

	// Daemon
	OpInitialize Op = "initialize daemon"
)

const errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, describe(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, describe(err))
}

// describe shortens well-known bus errors.
func describe(err error) string {
	var derr dbus.Error
	if errors.As(err, &derr) && derr.Name == errServiceUnknown {
		return "no notification daemon is running"
	}
	var pderr *dbus.Error
	if errors.As(err, &pderr) && pderr.Name == errServiceUnknown {
		return "no notification daemon is running"
	}
	return err.Error()
}
