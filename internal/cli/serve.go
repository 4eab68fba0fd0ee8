package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/uniclaim/claimsync/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr   string
	Campus string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Long: `Serve the claim, sync, ghost, turnover and locate operations over HTTP
until interrupted.

Example:
  uniclaim serve --db ./uniclaim.db --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Campus, "campus", "", "CUE location table (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	campusPath := a.cfg.CampusFile
	if opts.Campus != "" {
		campusPath = opts.Campus
	}
	table, err := loadCampus(campusPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load campus table", err)
	}

	addr := a.cfg.HTTPAddr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(ginMode(opts.Verbose))
	srv := api.NewServer(a.store, a.claims, a.turnover, table, a.logger)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s. Press Ctrl-C to stop.\n", addr)

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	a.logger.Info("server stopped gracefully")
	return nil
}

// ginMode keeps gin's route dump and debug warnings out of normal runs.
func ginMode(verbose bool) string {
	if verbose {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
