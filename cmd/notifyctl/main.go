// Command notifyctl sends notifications and controls a running notifyd.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/notify"
)

func main() {
	root := newRootCmd(func() (daemon, error) {
		c, err := notify.New()
		if err != nil {
			return nil, errors.New(errmsg.Format(errmsg.OpConnect, err))
		}
		return c, nil
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// daemon is the part of notify.Client used by the commands.
type daemon interface {
	Notify(n notify.Notification) (uint32, error)
	Close(id uint32) error
	ServerInformation() (notify.ServerInfo, error)
	Capabilities() ([]string, error)
	List() ([]notify.Entry, error)
	Dismiss(id uint32) error
	InvokeAction(id uint32, actionKey string) error
	ClearAll() error
	DND() (bool, error)
	SetDND(enabled bool) error
}
