package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aerophilia/aerophilia-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var a *app
	err := newRootCmd(&a).ExecuteContext(ctx)
	if a != nil {
		a.close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd stores the app it builds in *a so the caller can close it
// whether or not the command succeeded.
func newRootCmd(a **app) *cobra.Command {
	var printMetrics bool

	root := &cobra.Command{
		Use:           "aerophilia",
		Short:         "Aerophilia 2025 festival client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			*a, err = newApp(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if printMetrics && *a != nil {
				return (*a).writeMetrics(cmd.ErrOrStderr())
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&printMetrics, "print-metrics", false, "dump session metrics to stderr on exit")

	getApp := func() *app { return *a }
	root.AddCommand(
		newLoginCmd(getApp),
		newRegisterCmd(getApp),
		newGoogleCmd(getApp),
		newLogoutCmd(getApp),
		newWhoamiCmd(getApp),
		newProfileCmd(getApp),
		newRefreshCmd(getApp),
		newEventsCmd(getApp),
		newEnrollCmd(getApp),
		newCountdownCmd(getApp),
	)
	return root
}
