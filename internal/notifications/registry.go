package notifications

import (
	"errors"
	"fmt"
	"image"
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/notifyd/internal/history"
)

var (
	// ErrNotFound is returned when no notification has the requested id.
	ErrNotFound = errors.New("notification not found")
	// ErrUnknownAction is returned when a notification does not carry the
	// requested action.
	ErrUnknownAction = errors.New("unknown action")
)

// Store persists the registry state.
type Store interface {
	Load() history.Document
	Save(doc history.Document) error
}

// Signaler forwards lifecycle changes to the bus.
type Signaler interface {
	NotificationClosed(id uint32, reason CloseReason) error
	ActionInvoked(id uint32, actionKey string) error
}

// Settings are the user options the registry consults on every Notify.
type Settings struct {
	PopupTimeout int32 // ms, substituted for TimeoutDefault
	MaxPopups    int   // 0 = unlimited
	DND          bool
	AutoDismiss  bool // dismiss popups once their timeout elapses
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithSignaler sets where NotificationClosed and ActionInvoked are sent.
func WithSignaler(s Signaler) Option {
	return func(r *Registry) { r.signaler = s }
}

// WithImageStore sets where inline images are written. Without one, inline
// image hints are ignored.
func WithImageStore(s *ImageStore) Option {
	return func(r *Registry) { r.images = s }
}

// WithClock overrides the clock used for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry is the set of live notifications and the subset shown as popups.
// Every mutation rewrites the history before events are emitted.
type Registry struct {
	mu sync.Mutex

	store    Store
	images   *ImageStore
	signaler Signaler
	logger   *zap.Logger
	now      func() time.Time
	settings Settings

	lastID        uint32
	notifications map[uint32]*Notification
	popups        []uint32 // admission order, oldest first
	timers        map[uint32]*time.Timer

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// New creates a registry and restores the notifications saved in store.
func New(store Store, settings Settings, opts ...Option) *Registry {
	r := &Registry{
		store:         store,
		logger:        zap.NewNop(),
		now:           time.Now,
		settings:      settings,
		notifications: make(map[uint32]*Notification),
		timers:        make(map[uint32]*time.Timer),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.restore()
	return r
}

func (r *Registry) restore() {
	doc := r.store.Load()
	for _, rec := range doc.Notifications {
		n := FromRecord(rec)
		r.notifications[n.ID] = &n
		r.lastID = max(r.lastID, n.ID)
	}
	r.lastID = max(r.lastID, doc.ID)
	r.logger.Debug("restored notification history",
		zap.Int("count", len(r.notifications)), zap.Uint32("last_id", r.lastID))
}

// allocateID hands out the next id. Ids are never reused.
func (r *Registry) allocateID() uint32 {
	r.lastID++
	return r.lastID
}

// Notify registers a notification and returns its id.
//
// A non-zero ReplacesID closes the live notification with that id, if any,
// and registers the new one under the same id. Nothing is registered or
// closed when the inline image cannot be decoded.
func (r *Registry) Notify(req Request) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.prepareImage(req)
	if err != nil {
		return 0, err
	}

	id := req.ReplacesID
	if id == 0 {
		id = r.allocateID()
	}

	icon, err := r.resolveIcon(id, req, src)
	if err != nil {
		return 0, err
	}

	if req.ReplacesID != 0 {
		if old, ok := r.notifications[id]; ok {
			r.closeLocked(old, CloseReasonDismissed, old.Icon != icon)
		}
		r.lastID = max(r.lastID, id)
	}

	timeout := req.Timeout
	if timeout == TimeoutDefault {
		timeout = r.settings.PopupTimeout
	}

	n := &Notification{
		ID:      id,
		AppName: req.AppName,
		Icon:    icon,
		Summary: req.Summary,
		Body:    req.Body,
		Actions: slices.Clone(req.Actions),
		Urgency: req.Hints.urgency(),
		Timeout: timeout,
		Time:    r.now(),
		Popup:   !r.settings.DND,
	}

	if n.Popup {
		r.admitLocked(n)
	}
	r.notifications[id] = n
	r.syncLocked()

	r.logger.Debug("notification received",
		zap.Uint32("id", id),
		zap.String("app_name", n.AppName),
		zap.String("summary", n.Summary),
		zap.Bool("popup", n.Popup))

	snapshot := n.clone()
	r.broadcast(func(s *Subscription) { s.sendNotified(NotifiedEvent{Notification: snapshot}) })
	if n.Popup {
		r.broadcast(func(s *Subscription) { s.sendPopup(PopupEvent{Notification: snapshot}) })
		r.scheduleDismissLocked(n)
	}
	return id, nil
}

// prepareImage decodes the inline image that will become the icon, if any.
func (r *Registry) prepareImage(req Request) (image.Image, error) {
	if r.images == nil {
		return nil, nil
	}
	switch {
	case req.Hints.ImageData != nil:
		return r.images.prepare(req.Hints.ImageData)
	case req.Hints.ImagePath != "", req.AppIcon != "":
		return nil, nil
	case req.Hints.IconData != nil:
		return r.images.prepare(req.Hints.IconData)
	}
	return nil, nil
}

// resolveIcon applies the freedesktop precedence: image-data, image-path,
// app_icon, icon_data.
func (r *Registry) resolveIcon(id uint32, req Request, src image.Image) (string, error) {
	if src != nil {
		path, err := r.images.write(id, src)
		if err != nil {
			return "", fmt.Errorf("notification %d: %w", id, err)
		}
		return path, nil
	}
	switch {
	case req.Hints.ImagePath != "":
		return req.Hints.ImagePath, nil
	case req.AppIcon != "":
		return req.AppIcon, nil
	}
	return "", nil
}

// admitLocked makes room for one more popup, dismissing the oldest ones.
func (r *Registry) admitLocked(n *Notification) {
	limit := r.settings.MaxPopups
	for limit > 0 && len(r.popups) >= limit {
		oldest := r.notifications[r.popups[0]]
		if oldest == nil {
			r.popups = r.popups[1:]
			continue
		}
		r.dismissLocked(oldest, false)
	}
	r.popups = append(r.popups, n.ID)
}

// Close closes the notification with the given id. Unknown ids are ignored.
// Returns whether a notification was closed.
func (r *Registry) Close(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return false
	}
	r.closeLocked(n, CloseReasonDismissed, true)
	return true
}

// ClearAll closes every registered notification.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range slices.Sorted(maps.Keys(r.notifications)) {
		r.closeLocked(r.notifications[id], CloseReasonDismissed, true)
	}
}

func (r *Registry) closeLocked(n *Notification, reason CloseReason, removeImage bool) {
	delete(r.notifications, n.ID)
	if n.Popup {
		r.dismissLocked(n, false)
	}
	r.syncLocked()

	if removeImage && r.images != nil {
		if err := r.images.Remove(n.Icon); err != nil {
			r.logger.Warn("remove notification image", zap.Uint32("id", n.ID), zap.Error(err))
		}
	}

	if r.signaler != nil {
		if err := r.signaler.NotificationClosed(n.ID, reason); err != nil {
			r.logger.Warn("emit NotificationClosed", zap.Uint32("id", n.ID), zap.Error(err))
		}
	}

	r.logger.Debug("notification closed", zap.Uint32("id", n.ID), zap.Uint32("reason", uint32(reason)))
	snapshot := n.clone()
	r.broadcast(func(s *Subscription) { s.sendClosed(ClosedEvent{Notification: snapshot, Reason: reason}) })
}

// Dismiss removes the popup status of a notification without closing it.
// Returns whether the notification was a popup.
func (r *Registry) Dismiss(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || !n.Popup {
		return false
	}
	r.dismissLocked(n, true)
	return true
}

func (r *Registry) dismissLocked(n *Notification, persist bool) {
	if i := slices.Index(r.popups, n.ID); i >= 0 {
		r.popups = slices.Delete(r.popups, i, i+1)
	}
	n.Popup = false
	r.stopTimerLocked(n.ID)
	if persist {
		r.syncLocked()
	}

	r.logger.Debug("popup dismissed", zap.Uint32("id", n.ID))
	snapshot := n.clone()
	r.broadcast(func(s *Subscription) { s.sendDismissed(DismissedEvent{Notification: snapshot}) })
}

// InvokeAction reports to the sender that the user picked an action.
func (r *Registry) InvokeAction(id uint32, actionKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if !n.HasAction(actionKey) {
		return fmt.Errorf("%w: %q on notification %d", ErrUnknownAction, actionKey, id)
	}
	if r.signaler == nil {
		return nil
	}
	return r.signaler.ActionInvoked(id, actionKey)
}

// scheduleDismissLocked arms the auto-dismiss timer of a popup.
func (r *Registry) scheduleDismissLocked(n *Notification) {
	if !r.settings.AutoDismiss || n.Timeout <= 0 {
		return
	}
	r.stopTimerLocked(n.ID)
	r.timers[n.ID] = time.AfterFunc(time.Duration(n.Timeout)*time.Millisecond, func() {
		r.expire(n)
	})
}

func (r *Registry) expire(n *Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The id may have been replaced since the timer was armed.
	if cur, ok := r.notifications[n.ID]; !ok || cur != n || !n.Popup {
		return
	}
	delete(r.timers, n.ID)
	r.dismissLocked(n, true)
}

func (r *Registry) stopTimerLocked(id uint32) {
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
	}
}

// syncLocked rewrites the whole history.
func (r *Registry) syncLocked() {
	doc := history.Document{
		ID:            r.lastID,
		Notifications: make([]history.Record, 0, len(r.notifications)),
	}
	for _, id := range slices.Sorted(maps.Keys(r.notifications)) {
		doc.Notifications = append(doc.Notifications, r.notifications[id].Record())
	}
	if err := r.store.Save(doc); err != nil {
		r.logger.Error("save notification history", zap.Error(err))
	}
}

// Get returns the notification with the given id.
func (r *Registry) Get(id uint32) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return Notification{}, false
	}
	return n.clone(), true
}

// Notifications returns all registered notifications ordered by id.
func (r *Registry) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Notification, 0, len(r.notifications))
	for _, id := range slices.Sorted(maps.Keys(r.notifications)) {
		result = append(result, r.notifications[id].clone())
	}
	return result
}

// Popups returns the active popups, oldest first.
func (r *Registry) Popups() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Notification, 0, len(r.popups))
	for _, id := range r.popups {
		if n, ok := r.notifications[id]; ok {
			result = append(result, n.clone())
		}
	}
	return result
}

// Settings returns the current settings.
func (r *Registry) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// SetSettings replaces the settings. They apply to subsequent notifications,
// except that disabling auto-dismiss also cancels the pending timers.
func (r *Registry) SetSettings(s Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	if !s.AutoDismiss {
		for id := range r.timers {
			r.stopTimerLocked(id)
		}
	}
}

// SetDND toggles do-not-disturb.
func (r *Registry) SetDND(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.DND = enabled
}

// SetMaxIconSize changes the bound inline images are downscaled to.
func (r *Registry) SetMaxIconSize(size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.images != nil {
		r.images.SetMaxSize(size)
	}
}

// Subscribe creates a new event subscription.
func (r *Registry) Subscribe() *Subscription {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	sub := newSubscription()
	if r.closed {
		sub.close()
		return sub
	}
	r.subs = append(r.subs, sub)
	return sub
}

// Unsubscribe removes sub from the registry and closes its Done channel.
// Unknown or already removed subscriptions are ignored.
func (r *Registry) Unsubscribe(sub *Subscription) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	i := slices.Index(r.subs, sub)
	if i < 0 {
		return
	}
	r.subs = slices.Delete(r.subs, i, i+1)
	sub.close()
}

func (r *Registry) broadcast(send func(*Subscription)) {
	r.subsMu.RLock()
	defer r.subsMu.RUnlock()
	for _, sub := range r.subs {
		send(sub)
	}
}

// Stop cancels pending timers and ends all subscriptions.
// Registered notifications are kept in the history.
func (r *Registry) Stop() error {
	r.mu.Lock()
	for id := range r.timers {
		r.stopTimerLocked(id)
	}
	r.mu.Unlock()

	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	for _, sub := range r.subs {
		sub.close()
	}
	r.subs = nil
	return nil
}
