// Package notifications keeps track of the notifications received by the
// daemon: their lifecycle, the popup queue and the persisted history.
package notifications

import (
	"slices"
	"time"

	"github.com/llehouerou/notifyd/internal/history"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyNormal:
		return "normal"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// CloseReason is the reason reported in the NotificationClosed signal.
type CloseReason uint32

const (
	CloseReasonExpired   CloseReason = 1
	CloseReasonDismissed CloseReason = 2
	CloseReasonClosed    CloseReason = 3
	CloseReasonUndefined CloseReason = 4
)

// TimeoutNever means the notification does not expire.
const TimeoutNever int32 = 0

// TimeoutDefault asks the server to pick the timeout.
const TimeoutDefault int32 = -1

// Action is an action the user can invoke on a notification.
type Action struct {
	ID    string
	Label string
}

// Notification is one notification known to the registry.
type Notification struct {
	ID      uint32
	AppName string
	Icon    string // file path or icon name, empty when none
	Summary string
	Body    string
	Actions []Action
	Urgency Urgency
	Timeout int32 // ms, TimeoutNever = never expires
	Time    time.Time
	Popup   bool
}

// HasAction reports whether the notification carries the action key.
func (n Notification) HasAction(key string) bool {
	return slices.ContainsFunc(n.Actions, func(a Action) bool { return a.ID == key })
}

// Record returns the persisted form of the notification.
func (n Notification) Record() history.Record {
	actions := make([]history.Action, len(n.Actions))
	for i, a := range n.Actions {
		actions[i] = history.Action{ID: a.ID, Label: a.Label}
	}
	return history.Record{
		ID:      n.ID,
		AppName: n.AppName,
		Icon:    n.Icon,
		Summary: n.Summary,
		Body:    n.Body,
		Actions: actions,
		Urgency: uint8(n.Urgency),
		Timeout: n.Timeout,
		Time:    n.Time,
	}
}

// FromRecord rebuilds a notification from its persisted form.
// Popups never survive a restart, so the result is never a popup.
func FromRecord(r history.Record) Notification {
	actions := make([]Action, len(r.Actions))
	for i, a := range r.Actions {
		actions[i] = Action{ID: a.ID, Label: a.Label}
	}
	return Notification{
		ID:      r.ID,
		AppName: r.AppName,
		Icon:    r.Icon,
		Summary: r.Summary,
		Body:    r.Body,
		Actions: actions,
		Urgency: Urgency(r.Urgency),
		Timeout: r.Timeout,
		Time:    r.Time,
		Popup:   false,
	}
}

// ParseActions converts the flat D-Bus action list (id, label, id, label...)
// into pairs. A trailing id without a label is dropped.
func ParseActions(flat []string) []Action {
	actions := make([]Action, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		actions = append(actions, Action{ID: flat[i], Label: flat[i+1]})
	}
	return actions
}

// FlattenActions is the inverse of ParseActions.
func FlattenActions(actions []Action) []string {
	flat := make([]string, 0, len(actions)*2)
	for _, a := range actions {
		flat = append(flat, a.ID, a.Label)
	}
	return flat
}

func (n *Notification) clone() Notification {
	c := *n
	c.Actions = slices.Clone(n.Actions)
	return c
}
