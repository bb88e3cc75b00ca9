package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aouyang1/immichslideshow/api"
	"github.com/aouyang1/immichslideshow/backend"
	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/slideshow"
	"github.com/aouyang1/immichslideshow/store"
	"github.com/aouyang1/immichslideshow/surface"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the slideshow and its web surface",
	Long: `Run the slideshow event loop, the image backend and the HTTP server that
renders the display surface and accepts control commands.`,
	Example: `  # Start with defaults and IMMICH_SLIDESHOW_* environment
  immichslideshow serve

  # Start with a config file and debug logging
  immichslideshow serve --config /etc/immichslideshow.yaml --log-level debug

  # Read the viewport from the compositor
  immichslideshow serve --probe-display`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default is serverAddr from config)")
	serveCmd.Flags().Bool("probe-display", false, "read the viewport from wlr-randr")
	rootCmd.AddCommand(serveCmd)
}

func serveOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		overrides["serverAddr"] = f.Value.String()
	}
	if f := cmd.Flags().Lookup("probe-display"); f != nil && f.Changed {
		overrides["probeDisplay"] = f.Value.String() == "true"
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		overrides["logLevel"] = f.Value.String()
	}
	return overrides
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, serveOverrides(cmd))
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := store.NewDatabase(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	source, err := backend.NewSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize image source: %w", err)
	}

	caps := surface.ProbeCapabilities(
		surface.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		cfg.NativeExifOrientation,
		cfg.ProbeDisplay,
	)
	surf := surface.New(surface.Options{
		ShowImageInfo:     cfg.ShowImageInfo,
		ImageInfoLocation: cfg.ImageInfoLocation,
		ShowProgressBar:   cfg.ShowProgressBar,
		SlideshowSpeed:    cfg.SlideshowSpeed,
	}, caps)

	hub := api.NewHub()

	var show *slideshow.Slideshow
	helper := backend.NewHelper(source, database, func(ev slideshow.Event) {
		if err := show.Post(ctx, ev); err != nil {
			slog.Debug("dropping backend event", "event", fmt.Sprintf("%T", ev), "error", err)
		}
	})
	show = slideshow.New(cfg, helper, surf, slideshow.WithPublisher(hub))

	webServer, err := api.NewWebServer(show, database, hub)
	if err != nil {
		return fmt.Errorf("failed to initialize web server: %w", err)
	}

	slog.Info("starting slideshow",
		"identifier", cfg.Identifier,
		"source", cfg.Source,
		"mode", cfg.Mode,
		"viewport_width", caps.Viewport.Width,
		"viewport_height", caps.Viewport.Height,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return helper.Run(gctx) })
	g.Go(func() error { return show.Run(gctx) })
	g.Go(func() error { return webServer.Start(gctx, cfg.ServerAddr) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("slideshow stopped")
	return nil
}

