// Package dbusd exposes the notification registry on the session bus as
// org.freedesktop.Notifications, plus the notifyd control interface.
package dbusd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"go.uber.org/zap"

	"github.com/llehouerou/notifyd/internal/notifications"
	"github.com/llehouerou/notifyd/internal/notify"
)

// Capabilities are the optional features advertised by GetCapabilities.
var Capabilities = []string{"actions", "body", "icon-static", "persistence"}

// DefaultServerInfo is returned by GetServerInformation.
var DefaultServerInfo = notify.ServerInfo{
	Name:        "notifyd",
	Vendor:      "llehouerou",
	Version:     "1.0",
	SpecVersion: "1.2",
}

// AlreadyRunningError is returned by Start when another daemon owns the
// notification bus name.
type AlreadyRunningError struct {
	Name string
}

func (e *AlreadyRunningError) Error() string {
	return "another notification daemon is running: " + e.Name
}

// Registry is the notification state served on the bus.
type Registry interface {
	Notify(req notifications.Request) (uint32, error)
	Close(id uint32) bool
	Dismiss(id uint32) bool
	ClearAll()
	InvokeAction(id uint32, actionKey string) error
	Notifications() []notifications.Notification
	Settings() notifications.Settings
	SetDND(enabled bool)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithServerInfo overrides the GetServerInformation reply.
func WithServerInfo(info notify.ServerInfo) Option {
	return func(s *Server) { s.info = info }
}

// Server owns the notification bus name and emits the protocol signals.
type Server struct {
	conn   *dbus.Conn
	logger *zap.Logger
	info   notify.ServerInfo

	mu      sync.Mutex
	running bool
}

// Verify Server can be handed to the registry.
var _ notifications.Signaler = (*Server)(nil)

// New creates a server on conn. Nothing is exported until Start.
func New(conn *dbus.Conn, opts ...Option) *Server {
	s := &Server{
		conn:   conn,
		logger: zap.NewNop(),
		info:   DefaultServerInfo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start exports the service objects and claims the notification bus name.
// It fails with *AlreadyRunningError when another daemon holds the name.
func (s *Server) Start(reg Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("server already running")
	}

	if err := s.export(reg); err != nil {
		s.unexport()
		return err
	}

	reply, err := s.conn.RequestName(notify.BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		s.unexport()
		return fmt.Errorf("request bus name %s: %w", notify.BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner && reply != dbus.RequestNameReplyAlreadyOwner {
		s.unexport()
		name := s.identifyOwner()
		s.logger.Error("notification bus name already taken",
			zap.String("bus_name", notify.BusName), zap.String("owner", name))
		return &AlreadyRunningError{Name: name}
	}

	s.running = true
	s.logger.Info("notification server started",
		zap.String("bus_name", notify.BusName), zap.String("path", notify.ObjectPath))
	return nil
}

func (s *Server) export(reg Registry) error {
	path := dbus.ObjectPath(notify.ObjectPath)

	notif := &notificationsObject{reg: reg, info: s.info, logger: s.logger}
	if err := s.conn.Export(notif, path, notify.Interface); err != nil {
		return fmt.Errorf("export %s: %w", notify.Interface, err)
	}
	ctl := &controlObject{reg: reg, logger: s.logger}
	if err := s.conn.Export(ctl, path, notify.ControlInterface); err != nil {
		return fmt.Errorf("export %s: %w", notify.ControlInterface, err)
	}
	if err := s.conn.Export(introspect.NewIntrospectable(introspectNode()), path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspectable: %w", err)
	}
	return nil
}

func (s *Server) unexport() {
	path := dbus.ObjectPath(notify.ObjectPath)
	for _, iface := range []string{notify.Interface, notify.ControlInterface, "org.freedesktop.DBus.Introspectable"} {
		_ = s.conn.Export(nil, path, iface)
	}
}

// identifyOwner names the daemon holding the bus name. Daemons are not
// required to implement GetServerInformation correctly, so any failure falls
// back to the unique name of the owner.
func (s *Server) identifyOwner() string {
	client := notify.NewWithConn(s.conn)
	if info, err := client.ServerInformation(); err == nil && info.Name != "" {
		return info.Name
	}
	if owner, err := client.NameOwner(); err == nil {
		return owner
	}
	return "unknown"
}

// Stop releases the bus name and removes the exported objects.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(notify.BusName); err != nil {
		s.logger.Warn("release bus name", zap.Error(err))
	}
	s.unexport()
	// The connection is shared (SessionBus) and is not closed here.
	s.logger.Info("notification server stopped")
	return nil
}

// NotificationClosed emits the NotificationClosed signal.
func (s *Server) NotificationClosed(id uint32, reason notifications.CloseReason) error {
	return s.conn.Emit(notify.ObjectPath, notify.Interface+".NotificationClosed", id, uint32(reason))
}

// ActionInvoked emits the ActionInvoked signal.
func (s *Server) ActionInvoked(id uint32, actionKey string) error {
	return s.conn.Emit(notify.ObjectPath, notify.Interface+".ActionInvoked", id, actionKey)
}
