package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/phonekit/phonekit/internal/config"
	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the phonekit HTTP API",
	Long: `Serve the parse, validate and format operations as a JSON API.

Endpoints:
  GET  /health
  POST /api/parse, /api/validate, /api/format, /api/batch
  GET  /api/countries, /api/countries/{code}, /api/formats`,
	Example: `phonekit serve
phonekit serve --port 9000 --country 385`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Server port (default 8095)")
	serveCmd.Flags().String("host", "", "Server host (default 127.0.0.1)")
	serveCmd.Flags().String("country", "", "Default dialing code for national numbers")
	serveCmd.Flags().String("area", "", "Default area code for local numbers")
	serveCmd.Flags().String("format", "", "Default template name or pattern")
	serveCmd.Flags().String("log-level", "", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	srv, err := server.New(cfg, logger, country.Default())
	if err != nil {
		return err
	}

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.StartWithReady(ready)
	}()

	select {
	case <-ready:
		fmt.Fprintf(os.Stderr, "\n  %s %s listening on %s\n\n",
			ui.BrandEmoji, ui.StyleBoldCyan.Render("phonekit"), ui.StyleCode.Render("http://"+cfg.Address()))
	case err := <-errCh:
		return portError(cfg, err)
	}

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig)
		signal.Stop(sigCh)
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		return nil
	}
}

func portError(cfg *config.Config, err error) error {
	if strings.Contains(err.Error(), "address already in use") {
		return ui.WithSuggestions(fmt.Errorf("port %d is already in use", cfg.Server.Port),
			fmt.Sprintf("phonekit serve --port %d   # use a different port", cfg.Server.Port+1),
		)
	}
	return err
}
