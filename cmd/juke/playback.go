package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avlbx/juke/internal/cli"
	"github.com/avlbx/juke/internal/session"
)

func playCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			if app.session.View().Playing {
				return printStatus(app)
			}
			if err := app.session.Dispatch(ctx, session.ActionPlayPause, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func pauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			if !app.session.View().Playing {
				return printStatus(app)
			}
			if err := app.session.Dispatch(ctx, session.ActionPlayPause, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func toggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			if err := app.session.Dispatch(ctx, session.ActionPlayPause, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func stopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := app.session.Dispatch(ctx, session.ActionStop, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func nextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Skip to the next track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			if err := app.session.Dispatch(ctx, session.ActionNext, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func prevCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prev",
		Short: "Previous track, or restart the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			if err := app.session.Dispatch(ctx, session.ActionPrevious, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func seekCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <m:ss|seconds|percent%>",
		Short: "Seek within the current track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			view := app.session.View()
			track := view.Current()
			if track == nil || track.Duration <= 0 {
				return cli.WrapError(cli.ExitUsage, "nothing to seek in", nil)
			}

			fraction, err := parseSeekTarget(args[0], track.Duration)
			if err != nil {
				return cli.WrapError(cli.ExitUsage, err.Error(), nil)
			}
			if err := app.session.CommitSeek(ctx, fraction); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func gainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gain <0..100>",
		Short: "Set jukebox volume in percent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			percent, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
			if err != nil {
				return cli.WrapError(cli.ExitUsage, fmt.Sprintf("invalid gain %q", args[0]), nil)
			}
			params := session.Params{Gain: percent / 100}
			if err := app.session.Dispatch(ctx, session.ActionSetGain, params); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

// parseSeekTarget accepts "m:ss", plain seconds, or "nn%" and returns the
// target as a fraction of duration.
func parseSeekTarget(arg string, duration float64) (float64, error) {
	arg = strings.TrimSpace(arg)

	if strings.HasSuffix(arg, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seek target %q", arg)
		}
		return percent / 100, nil
	}

	if minutes, seconds, ok := strings.Cut(arg, ":"); ok {
		m, errM := strconv.Atoi(minutes)
		s, errS := strconv.Atoi(seconds)
		if errM != nil || errS != nil || s < 0 || s > 59 || m < 0 {
			return 0, fmt.Errorf("invalid seek target %q", arg)
		}
		return (float64(m)*60 + float64(s)) / duration, nil
	}

	seconds, err := strconv.ParseFloat(arg, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("invalid seek target %q", arg)
	}
	return seconds / duration, nil
}
