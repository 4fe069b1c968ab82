package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client talks to the notification daemon owning BusName.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// New connects to the session bus.
func New() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return NewWithConn(conn), nil
}

// NewWithConn creates a client on an existing connection.
func NewWithConn(conn *dbus.Conn) *Client {
	return &Client{conn: conn, obj: conn.Object(BusName, ObjectPath)}
}

// Notify sends a notification via D-Bus.
func (c *Client) Notify(notif Notification) (uint32, error) {
	appName := notif.AppName
	if appName == "" {
		appName = "notifyctl"
	}
	actions := notif.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(notif.Urgency)),
	}

	// D-Bus Notify method signature:
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := c.obj.Call(
		Interface+".Notify",
		0,
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		actions,
		hints,
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes a notification by ID.
func (c *Client) Close(id uint32) error {
	return c.obj.Call(Interface+".CloseNotification", 0, id).Err
}

// ServerInformation asks the daemon to identify itself.
func (c *Client) ServerInformation() (ServerInfo, error) {
	var info ServerInfo
	err := c.obj.Call(Interface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion)
	return info, err
}

// Capabilities returns the optional features the daemon implements.
func (c *Client) Capabilities() ([]string, error) {
	var caps []string
	err := c.obj.Call(Interface+".GetCapabilities", 0).Store(&caps)
	return caps, err
}

// NameOwner returns the unique bus name currently owning BusName.
func (c *Client) NameOwner() (string, error) {
	var owner string
	err := c.conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, BusName).Store(&owner)
	return owner, err
}

// List returns every notification held by notifyd.
func (c *Client) List() ([]Entry, error) {
	var entries []Entry
	err := c.obj.Call(ControlInterface+".List", 0).Store(&entries)
	return entries, err
}

// Dismiss removes the popup status of a notification.
func (c *Client) Dismiss(id uint32) error {
	return c.obj.Call(ControlInterface+".Dismiss", 0, id).Err
}

// InvokeAction triggers an action of a notification.
func (c *Client) InvokeAction(id uint32, actionKey string) error {
	return c.obj.Call(ControlInterface+".InvokeAction", 0, id, actionKey).Err
}

// ClearAll closes every notification.
func (c *Client) ClearAll() error {
	return c.obj.Call(ControlInterface+".ClearAll", 0).Err
}

// DND reports whether do-not-disturb is active.
func (c *Client) DND() (bool, error) {
	var enabled bool
	err := c.obj.Call(ControlInterface+".GetDND", 0).Store(&enabled)
	return enabled, err
}

// SetDND toggles do-not-disturb.
func (c *Client) SetDND(enabled bool) error {
	return c.obj.Call(ControlInterface+".SetDND", 0, enabled).Err
}
