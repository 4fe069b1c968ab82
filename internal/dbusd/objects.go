package dbusd

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/llehouerou/notifyd/internal/notifications"
	"github.com/llehouerou/notifyd/internal/notify"
)

// D-Bus error names returned by the control interface.
const (
	errNameNotFound      = notify.ControlInterface + ".Error.NotFound"
	errNameUnknownAction = notify.ControlInterface + ".Error.UnknownAction"
)

// notificationsObject implements org.freedesktop.Notifications.
type notificationsObject struct {
	reg    Registry
	info   notify.ServerInfo
	logger *zap.Logger
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (o *notificationsObject) GetCapabilities() ([]string, *dbus.Error) {
	return Capabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (o *notificationsObject) GetServerInformation() (string, string, string, string, *dbus.Error) {
	return o.info.Name, o.info.Vendor, o.info.Version, o.info.SpecVersion, nil
}

// CloseNotification closes a notification by ID. Unknown ids are ignored.
// D-Bus method: CloseNotification(u) -> nothing
func (o *notificationsObject) CloseNotification(id uint32) *dbus.Error {
	o.logger.Debug("CloseNotification called", zap.Uint32("id", id))
	o.reg.Close(id)
	return nil
}

// Notify handles incoming notification requests.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (o *notificationsObject) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	parsed, err := parseHints(hints, appIcon)
	if err != nil {
		o.logger.Warn("rejecting notification", zap.String("app_name", appName), zap.Error(err))
		return 0, dbus.MakeFailedError(err)
	}

	id, err := o.reg.Notify(notifications.Request{
		AppName:    appName,
		ReplacesID: replacesID,
		AppIcon:    appIcon,
		Summary:    summary,
		Body:       body,
		Actions:    notifications.ParseActions(actions),
		Hints:      parsed,
		Timeout:    expireTimeout,
	})
	if err != nil {
		o.logger.Warn("rejecting notification", zap.String("app_name", appName), zap.Error(err))
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

// controlObject implements the notifyd control interface.
type controlObject struct {
	reg    Registry
	logger *zap.Logger
}

// List returns every registered notification ordered by id.
func (o *controlObject) List() ([]notify.Entry, *dbus.Error) {
	all := o.reg.Notifications()
	entries := make([]notify.Entry, len(all))
	for i, n := range all {
		entries[i] = toEntry(n)
	}
	return entries, nil
}

// Dismiss removes the popup status of a notification.
func (o *controlObject) Dismiss(id uint32) *dbus.Error {
	o.reg.Dismiss(id)
	return nil
}

// InvokeAction emits ActionInvoked for an action of a notification.
func (o *controlObject) InvokeAction(id uint32, actionKey string) *dbus.Error {
	err := o.reg.InvokeAction(id, actionKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notifications.ErrNotFound):
		return dbus.NewError(errNameNotFound, []any{err.Error()})
	case errors.Is(err, notifications.ErrUnknownAction):
		return dbus.NewError(errNameUnknownAction, []any{err.Error()})
	default:
		o.logger.Warn("emit ActionInvoked", zap.Uint32("id", id), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
}

// ClearAll closes every notification.
func (o *controlObject) ClearAll() *dbus.Error {
	o.reg.ClearAll()
	return nil
}

// GetDND reports whether do-not-disturb is active.
func (o *controlObject) GetDND() (bool, *dbus.Error) {
	return o.reg.Settings().DND, nil
}

// SetDND toggles do-not-disturb.
func (o *controlObject) SetDND(enabled bool) *dbus.Error {
	o.reg.SetDND(enabled)
	o.logger.Info("do-not-disturb changed", zap.Bool("dnd", enabled))
	return nil
}

func toEntry(n notifications.Notification) notify.Entry {
	return notify.Entry{
		ID:      n.ID,
		AppName: n.AppName,
		Icon:    n.Icon,
		Summary: n.Summary,
		Body:    n.Body,
		Actions: notifications.FlattenActions(n.Actions),
		Urgency: byte(n.Urgency),
		Timeout: n.Timeout,
		Time:    n.Time.UnixMilli(),
		Popup:   n.Popup,
	}
}
