package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/notify"
)

var errUsage = errors.New("invalid arguments")

func failed(op errmsg.Op, err error) error {
	return errors.New(errmsg.Format(op, err))
}

func failedWith(op errmsg.Op, context string, err error) error {
	return errors.New(errmsg.FormatWith(op, context, err))
}

// newRootCmd builds the command tree. connect is called once per command
// that talks to the daemon.
func newRootCmd(connect func() (daemon, error)) *cobra.Command {
	root := &cobra.Command{
		Use:   "notifyctl",
		Short: "Send notifications and control notifyd",
		Long: `notifyctl talks to the notification daemon on the session bus.

Any org.freedesktop.Notifications server can receive "send", "close" and
"info". The other commands need notifyd.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSendCmd(connect),
		newCloseCmd(connect),
		newListCmd(connect),
		newDismissCmd(connect),
		newInvokeCmd(connect),
		newClearCmd(connect),
		newDNDCmd(connect),
		newInfoCmd(connect),
	)
	return root
}

func newSendCmd(connect func() (daemon, error)) *cobra.Command {
	var (
		appName  string
		icon     string
		urgency  string
		timeout  int32
		replaces uint32
		actions  []string
	)

	cmd := &cobra.Command{
		Use:   "send <summary> [body]",
		Short: "Send a notification and print its id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := parseUrgency(urgency)
			if err != nil {
				return failed(errmsg.OpSend, err)
			}
			flat, err := parseActions(actions)
			if err != nil {
				return failed(errmsg.OpSend, err)
			}

			n := notify.Notification{
				AppName:    appName,
				Title:      args[0],
				Icon:       icon,
				Actions:    flat,
				Timeout:    timeout,
				ReplacesID: replaces,
				Urgency:    u,
			}
			if len(args) == 2 {
				n.Body = args[1]
			}

			d, err := connect()
			if err != nil {
				return err
			}
			id, err := d.Notify(n)
			if err != nil {
				return failed(errmsg.OpSend, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&appName, "app", "notifyctl", "application name")
	f.StringVarP(&icon, "icon", "i", "", "icon name or image path")
	f.StringVarP(&urgency, "urgency", "u", "normal", "low, normal or critical")
	f.Int32VarP(&timeout, "timeout", "t", -1, "expiration in ms (-1 = server default, 0 = never)")
	f.Uint32VarP(&replaces, "replace", "r", 0, "id of the notification to replace")
	f.StringArrayVarP(&actions, "action", "a", nil, "action as id=label, may be repeated")
	return cmd
}

func newCloseCmd(connect func() (daemon, error)) *cobra.Command {
	return idCmd(connect, "close", "Close a notification", errmsg.OpClose, daemon.Close)
}

func newDismissCmd(connect func() (daemon, error)) *cobra.Command {
	return idCmd(connect, "dismiss", "Remove the popup status of a notification", errmsg.OpDismiss, daemon.Dismiss)
}

func idCmd(
	connect func() (daemon, error),
	name, short string,
	op errmsg.Op,
	call func(daemon, uint32) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return failed(op, err)
			}
			d, err := connect()
			if err != nil {
				return err
			}
			if err := call(d, id); err != nil {
				return failedWith(op, args[0], err)
			}
			return nil
		},
	}
}

func newInvokeCmd(connect func() (daemon, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <id> <action>",
		Short: "Invoke an action of a notification",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return failed(errmsg.OpInvoke, err)
			}
			d, err := connect()
			if err != nil {
				return err
			}
			if err := d.InvokeAction(id, args[1]); err != nil {
				return failedWith(errmsg.OpInvoke, args[1], err)
			}
			return nil
		},
	}
}

func newClearCmd(connect func() (daemon, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Close every notification",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := connect()
			if err != nil {
				return err
			}
			if err := d.ClearAll(); err != nil {
				return failed(errmsg.OpClear, err)
			}
			return nil
		},
	}
}

func newListCmd(connect func() (daemon, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notifications, newest last",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := connect()
			if err != nil {
				return err
			}
			entries, err := d.List()
			if err != nil {
				return failed(errmsg.OpList, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderList(entries, now()))
			return err
		},
	}
}

func newDNDCmd(connect func() (daemon, error)) *cobra.Command {
	return &cobra.Command{
		Use:       "dnd [on|off|toggle]",
		Short:     "Show or change do-not-disturb",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := connect()
			if err != nil {
				return err
			}
			current, err := d.DND()
			if err != nil {
				return failed(errmsg.OpDND, err)
			}

			want := current
			if len(args) == 1 {
				switch args[0] {
				case "on":
					want = true
				case "off":
					want = false
				case "toggle":
					want = !current
				}
			}
			if want != current {
				if err := d.SetDND(want); err != nil {
					return failed(errmsg.OpDND, err)
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderDND(want))
			return err
		},
	}
}

func newInfoCmd(connect func() (daemon, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server information and capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := connect()
			if err != nil {
				return err
			}
			info, err := d.ServerInformation()
			if err != nil {
				return failed(errmsg.OpInfo, err)
			}
			caps, err := d.Capabilities()
			if err != nil {
				return failed(errmsg.OpInfo, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderInfo(info, caps))
			return err
		},
	}
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad notification id %q", errUsage, s)
	}
	return uint32(id), nil
}

func parseUrgency(s string) (notify.Urgency, error) {
	switch strings.ToLower(s) {
	case "low", "0":
		return notify.UrgencyLow, nil
	case "normal", "1", "":
		return notify.UrgencyNormal, nil
	case "critical", "2":
		return notify.UrgencyCritical, nil
	}
	return 0, fmt.Errorf("%w: unknown urgency %q", errUsage, s)
}

// parseActions turns id=label values into flat D-Bus pairs.
func parseActions(values []string) ([]string, error) {
	flat := make([]string, 0, len(values)*2)
	for _, v := range values {
		id, label, ok := strings.Cut(v, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: action %q, want id=label", errUsage, v)
		}
		flat = append(flat, id, label)
	}
	return flat, nil
}
