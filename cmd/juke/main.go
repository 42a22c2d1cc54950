package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avlbx/juke/internal/adapters/clock"
	"github.com/avlbx/juke/internal/adapters/config"
	"github.com/avlbx/juke/internal/adapters/output"
	"github.com/avlbx/juke/internal/adapters/subsonic"
	jukeapp "github.com/avlbx/juke/internal/app"
	"github.com/avlbx/juke/internal/cli"
	"github.com/avlbx/juke/internal/session"
)

type app struct {
	session *session.Session
	printer output.Printer
	logger  *zap.Logger
	config  config.Config
	quiet   bool
	json    bool
	timeout time.Duration
}

func main() {
	root := &cobra.Command{
		Use:           "juke",
		Short:         "Remote control for a Subsonic jukebox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		server  string
		userOpt string
		passOpt string
		timeout time.Duration
		quiet   bool
		jsonOut bool
		verbose bool
	)

	root.PersistentFlags().StringVarP(&server, "server", "s", "", "server URL")
	root.PersistentFlags().StringVar(&userOpt, "user", "", "server username")
	root.PersistentFlags().StringVar(&passOpt, "pass", "", "server password")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "command timeout")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output json")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if server == "" {
			server = cfg.Server
		}
		if userOpt == "" {
			userOpt = cfg.Username
		}
		if passOpt == "" {
			passOpt = cfg.Password
		}
		if !cmd.Flags().Changed("timeout") && cfg.Timeout.Std() > 0 {
			timeout = cfg.Timeout.Std()
		}
		if server == "" {
			return cli.WrapError(cli.ExitUsage, "server is required (set --server or config)", nil)
		}
		if userOpt == "" || passOpt == "" {
			return cli.WrapError(cli.ExitUsage, "credentials are required (set --user/--pass or config)", nil)
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger := jukeapp.NewLogger(level)

		transport, err := subsonic.New(subsonic.Options{
			BaseURL:  server,
			Username: userOpt,
			Password: passOpt,
			Timeout:  timeout,
			Logger:   logger,
		})
		if err != nil {
			return err
		}

		repeat, ok := session.ParseRepeatMode(cfg.Sync.Repeat)
		if !ok {
			return cli.WrapError(cli.ExitUsage, fmt.Sprintf("invalid repeat mode %q in config", cfg.Sync.Repeat), nil)
		}

		sess := session.New(session.Options{
			Transport:    transport,
			Clock:        clock.Clock{},
			Notifier:     jukeapp.Notifier{Logger: logger},
			Logger:       logger,
			PollInterval: cfg.Sync.PollInterval.Std(),
			TickInterval: cfg.Sync.TickInterval.Std(),
			Repeat:       repeat,
		})

		var printer output.Printer
		if jsonOut {
			printer = output.JSONPrinter{}
		} else {
			printer = output.HumanPrinter{}
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
			session: sess,
			printer: printer,
			logger:  logger,
			config:  cfg,
			quiet:   quiet,
			json:    jsonOut,
			timeout: timeout,
		}))
		return nil
	}

	root.AddCommand(statusCommand())
	root.AddCommand(playCommand())
	root.AddCommand(pauseCommand())
	root.AddCommand(toggleCommand())
	root.AddCommand(stopCommand())
	root.AddCommand(nextCommand())
	root.AddCommand(prevCommand())
	root.AddCommand(seekCommand())
	root.AddCommand(gainCommand())
	root.AddCommand(queueCommand())
	root.AddCommand(attachCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "juke: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *app {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*app)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// refreshed pulls an authoritative snapshot so the command acts on, and
// prints, fresh state.
func refreshed(ctx context.Context, a *app) error {
	if err := a.session.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

func printStatus(a *app) error {
	if a.quiet {
		return nil
	}
	return a.printer.Print(output.StatusFrom(a.session.View()))
}
