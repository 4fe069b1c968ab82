package notifications

// NotifiedEvent is emitted when a notification is registered by Notify.
// Notifications restored from history at startup do not emit it.
type NotifiedEvent struct {
	Notification Notification
}

// PopupEvent is emitted when a new notification is admitted as a popup.
// Never emitted while do-not-disturb is active.
type PopupEvent struct {
	Notification Notification
}

// ClosedEvent is emitted once a notification has been removed and the
// history has been rewritten.
type ClosedEvent struct {
	Notification Notification
	Reason       CloseReason
}

// DismissedEvent is emitted when a notification stops being a popup.
// The notification stays registered.
type DismissedEvent struct {
	Notification Notification
}
