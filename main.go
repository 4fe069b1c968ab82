package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/llehouerou/notifyd/internal/config"
	"github.com/llehouerou/notifyd/internal/dbusd"
	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/history"
	"github.com/llehouerou/notifyd/internal/logging"
	"github.com/llehouerou/notifyd/internal/notifications"
)

func main() {
	if err := run(); err != nil {
		var running *dbusd.AlreadyRunningError
		if errors.As(err, &running) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := history.Open(cfg.History.Path, cfg.History.ImageDir, logger.Named("history"))
	if err != nil {
		return err
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}

	srv := dbusd.New(conn, dbusd.WithLogger(logger.Named("dbus")))
	reg := notifications.New(store, settingsFrom(cfg),
		notifications.WithLogger(logger.Named("notifications")),
		notifications.WithSignaler(srv),
		notifications.WithImageStore(notifications.NewImageStore(store.ImageDir(), cfg.Notifications.MaxIconSize)),
	)
	defer func() { _ = reg.Stop() }()

	// Subscribe before claiming the name so no event is missed.
	sub := reg.Subscribe()
	go logEvents(logger.Named("events"), sub)

	if err := srv.Start(reg); err != nil {
		return err
	}
	defer func() { _ = srv.Stop() }()

	stopWatch, err := config.Watch(config.Paths(), func(c *config.Config, err error) {
		if err != nil {
			logger.Warn("reload config", zap.Error(err))
			return
		}
		reg.SetSettings(settingsFrom(c))
		reg.SetMaxIconSize(c.Notifications.MaxIconSize)
		logger.Info("configuration reloaded",
			zap.Bool("dnd", c.Notifications.DND),
			zap.Int("max_popups_count", c.Notifications.MaxPopupsCount),
			zap.Int32("popup_timeout", c.Notifications.PopupTimeout))
	})
	if err != nil {
		logger.Warn("watch config", zap.Error(err))
	} else {
		defer func() { _ = stopWatch() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	return nil
}

func settingsFrom(cfg *config.Config) notifications.Settings {
	return notifications.Settings{
		PopupTimeout: cfg.Notifications.PopupTimeout,
		MaxPopups:    cfg.Notifications.MaxPopupsCount,
		DND:          cfg.Notifications.DND,
		AutoDismiss:  cfg.Notifications.AutoDismiss,
	}
}

func logEvents(logger *zap.Logger, sub *notifications.Subscription) {
	for {
		select {
		case e := <-sub.Notified:
			logger.Info("notified",
				zap.Uint32("id", e.Notification.ID),
				zap.String("app_name", e.Notification.AppName),
				zap.String("summary", e.Notification.Summary),
				zap.Stringer("urgency", e.Notification.Urgency))
		case e := <-sub.NewPopup:
			logger.Debug("new popup", zap.Uint32("id", e.Notification.ID))
		case e := <-sub.Dismissed:
			logger.Debug("dismissed", zap.Uint32("id", e.Notification.ID))
		case e := <-sub.Closed:
			logger.Info("closed", zap.Uint32("id", e.Notification.ID), zap.Uint32("reason", uint32(e.Reason)))
		case <-sub.Done:
			return
		}
	}
}
