package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/avlbx/juke/internal/adapters/output"
	"github.com/avlbx/juke/internal/cli"
	"github.com/avlbx/juke/internal/session"
)

func queueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and edit the jukebox queue",
	}
	cmd.AddCommand(queueLsCommand())
	cmd.AddCommand(queueJumpCommand())
	cmd.AddCommand(queueRemoveCommand())
	cmd.AddCommand(queueShuffleCommand())
	cmd.AddCommand(queueClearCommand())
	cmd.AddCommand(queueAddRandomCommand())
	return cmd
}

func queueLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List queue entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			return app.printer.Print(output.QueueFrom(app.session.View()))
		},
	}
}

func queueJumpCommand() *cobra.Command {
	var offset float64

	cmd := &cobra.Command{
		Use:   "jump <index>",
		Short: "Jump to a queue index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			params := session.Params{Index: index, Offset: offset}
			if err := app.session.Dispatch(ctx, session.ActionSkipTo, params); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
	cmd.Flags().Float64Var(&offset, "offset", 0, "start position in seconds")

	return cmd
}

func queueRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove a queue entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			if err := app.session.Dispatch(ctx, session.ActionRemove, session.Params{Index: index}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func queueShuffleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shuffle",
		Short: "Shuffle the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := app.session.Dispatch(ctx, session.ActionShuffle, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func queueClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := app.session.Dispatch(ctx, session.ActionClear, session.Params{}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
}

func queueAddRandomCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "add-random",
		Short: "Append random songs from the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := app.session.Dispatch(ctx, session.ActionAddRandom, session.Params{Count: count}); err != nil {
				return err
			}
			return printStatus(app)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of songs to add")

	return cmd
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, cli.WrapError(cli.ExitUsage, "index must be a non-negative integer", err)
	}
	return index, nil
}
