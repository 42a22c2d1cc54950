package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/avlbx/juke/internal/adapters/mqttfeed"
	jukeapp "github.com/avlbx/juke/internal/app"
	"github.com/avlbx/juke/internal/cli"
	"github.com/avlbx/juke/internal/mpris"
	"github.com/avlbx/juke/internal/session"
)

func attachCommand() *cobra.Command {
	var (
		repeatOpt string
		withMPRIS bool
		noDisplay bool
	)

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Stay attached: live display, interpolation and auto-advance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)

			if cmd.Flags().Changed("repeat") {
				repeat, ok := session.ParseRepeatMode(repeatOpt)
				if !ok {
					return cli.WrapError(cli.ExitUsage, fmt.Sprintf("invalid repeat mode %q", repeatOpt), nil)
				}
				app.session.SetRepeat(repeat)
			}
			if !cmd.Flags().Changed("mpris") {
				withMPRIS = app.config.Sync.MPRIS
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			modules := []jukeapp.ModuleRunner{
				{Name: "session", Run: app.session.Run},
			}

			if app.config.Push.Broker != "" {
				topic := app.config.Push.Topic
				if topic == "" {
					topic = "juke/status"
				}
				feed, err := mqttfeed.New(mqttfeed.Options{
					BrokerURL: app.config.Push.Broker,
					Topic:     topic,
					ClientID:  app.config.Push.ClientID,
					Logger:    app.logger,
				}, app.session.ApplySnapshot)
				if err != nil {
					return err
				}
				modules = append(modules, jukeapp.ModuleRunner{Name: "push-feed", Run: feed.Run})
			}

			if withMPRIS {
				modules = append(modules, jukeapp.ModuleRunner{Name: "mpris", Run: func(ctx context.Context) error {
					adapter, err := mpris.New(app.session)
					if err != nil {
						return err
					}
					<-ctx.Done()
					return adapter.Close()
				}})
			}

			if !noDisplay && !app.quiet {
				modules = append(modules, jukeapp.ModuleRunner{Name: "display", Run: func(ctx context.Context) error {
					return runDisplay(ctx, app.session)
				}})
			}

			supervisor := jukeapp.Supervisor{Logger: app.logger}
			return supervisor.Run(ctx, modules)
		},
	}

	cmd.Flags().StringVar(&repeatOpt, "repeat", "off", "repeat mode: off|all|one")
	cmd.Flags().BoolVar(&withMPRIS, "mpris", false, "expose an MPRIS player on D-Bus")
	cmd.Flags().BoolVar(&noDisplay, "no-display", false, "disable the live display")

	return cmd
}

const displayRefresh = 500 * time.Millisecond

func runDisplay(ctx context.Context, sess *session.Session) error {
	area, err := pterm.DefaultArea.Start()
	if err != nil {
		return err
	}
	defer func() { _ = area.Stop() }()

	ticker := time.NewTicker(displayRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			area.Update(renderView(sess.View()))
		}
	}
}

func renderView(view session.View) string {
	var b strings.Builder

	state := "⏸"
	if view.Playing {
		state = "▶"
	}

	track := view.Current()
	if track == nil {
		fmt.Fprintf(&b, "%s (empty queue)\n", state)
		return b.String()
	}

	title := track.Title
	if track.Artist != "" {
		title = track.Artist + " - " + track.Title
	}
	fmt.Fprintf(&b, "%s %s\n", state, pterm.Bold.Sprint(title))
	fmt.Fprintf(&b, "  %s / %s  %s  vol %d%%\n",
		formatClock(view.Position),
		formatClock(track.Duration),
		progressBar(view.Position, track.Duration, 24),
		int(view.Gain*100+0.5),
	)
	fmt.Fprintf(&b, "  track %d of %d  repeat %s\n",
		view.CurrentIndex+1, len(view.Queue), view.Repeat)
	return b.String()
}

func progressBar(position, duration float64, width int) string {
	if duration <= 0 {
		return ""
	}
	filled := int(position / duration * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
