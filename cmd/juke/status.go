package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/avlbx/juke/internal/adapters/output"
)

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show jukebox status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			if err := refreshed(ctx, app); err != nil {
				return err
			}
			return app.printer.Print(output.StatusFrom(app.session.View()))
		},
	}
}
