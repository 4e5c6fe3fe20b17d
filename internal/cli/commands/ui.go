package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chartsmith/internal/ui"
	"github.com/leapstack-labs/chartsmith/internal/ui/registry"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the chartsmith web UI",
		Long: `Start a local web server for building charts interactively.

The UI provides:
- Dataset upload and preview
- Interactive chart builder with live preview
- Saved chart browsing, regeneration and export`,
		Example: `  # Start UI on the default port
  chartsmith ui

  # Start on a custom port
  chartsmith ui --port 3000

  # Start without auto-opening the browser
  chartsmith ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8742)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch the datasets directory for changes")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cfg := getConfig(cmd.Context())
	logger := getLogger(cmd.Context())

	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := cfg.UI.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	if _, err := os.Stat(cfg.DatasetsDir); os.IsNotExist(err) {
		logger.Warn("datasets directory does not exist, starting with uploads only", "dir", cfg.DatasetsDir)
		watch = false
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	defer func() { _ = st.Close() }()

	load, cleanup, err := newLoadFunc(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := ui.NewServer(ui.Config{
		Store:         st,
		Registry:      registry.New(),
		Port:          port,
		Watch:         watch,
		DatasetsDir:   cfg.DatasetsDir,
		SessionSecret: generateSessionSecret(cfg),
		Load:          load,
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := server.LoadDir(ctx); err != nil {
		logger.Warn("failed to scan datasets directory", "error", err)
	}

	if !opts.NoBrowser {
		go openBrowser(fmt.Sprintf("http://localhost:%d", port))
	}

	fmt.Printf("Starting UI server on http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
