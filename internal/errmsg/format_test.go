//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSend,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpSend,
			err:      errors.New("invalid image data"),
			expected: "Failed to send notification: invalid image data",
		},
		{
			name:     "list operation",
			op:       OpList,
			err:      errors.New("permission denied"),
			expected: "Failed to list notifications: permission denied",
		},
		{
			name:     "daemon not running",
			op:       OpClose,
			err:      dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown", Body: []any{"The name is not activatable"}},
			expected: "Failed to close notification: no notification daemon is running",
		},
		{
			name:     "wrapped daemon not running",
			op:       OpDND,
			err:      fmt.Errorf("call: %w", &dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}),
			expected: "Failed to change do-not-disturb: no notification daemon is running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpInvoke,
			context:  "reply",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpInvoke,
			context:  "reply",
			err:      errors.New("unknown action"),
			expected: "Failed to invoke action 'reply': unknown action",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpDismiss,
			context:  "",
			err:      errors.New("boom"),
			expected: "Failed to dismiss notification: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}
