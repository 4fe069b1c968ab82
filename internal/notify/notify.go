// Package notify is a client of the org.freedesktop.Notifications service and
// of the notifyd control interface.
package notify

import "time"

const (
	BusName          = "org.freedesktop.Notifications"
	ObjectPath       = "/org/freedesktop/Notifications"
	Interface        = "org.freedesktop.Notifications"
	ControlInterface = "io.github.llehouerou.Notifyd"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	AppName    string   // defaults to "notifyctl"
	Title      string   // Summary text (required)
	Body       string   // Body text (optional, supports basic markup)
	Icon       string   // Path to image file or icon name (optional)
	Actions    []string // flat id/label pairs
	Timeout    int32    // ms, -1 = server default, 0 = never expire
	ReplacesID uint32   // 0 = new notification, >0 = replace existing
	Urgency    Urgency  // Low, Normal, Critical
}

// ServerInfo is the reply of GetServerInformation.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// Entry is one notification as listed by the control interface.
// Field order is the D-Bus struct layout (ussssasyixb).
type Entry struct {
	ID      uint32
	AppName string
	Icon    string
	Summary string
	Body    string
	Actions []string
	Urgency byte
	Timeout int32
	Time    int64 // unix milliseconds
	Popup   bool
}

// Created returns the creation time of the entry.
func (e Entry) Created() time.Time {
	return time.UnixMilli(e.Time)
}
