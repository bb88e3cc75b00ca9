// Package cmd is the command line interface of the slideshow
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "immichslideshow",
		Short: "Immich photo slideshow for a smart mirror",
		Long: `immichslideshow shows a rotating slideshow of photos from an Immich server,
an S3 bucket or a local directory on a smart mirror display.

The serve command runs the slideshow and its web surface. The ctl command
controls a running slideshow over its REST API.`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, yaml or json (default is defaults plus IMMICH_SLIDESHOW_* environment)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	setupLogging(viper.GetString("logLevel"))
}

// setupLogging installs a text slog handler at the named level. Unknown levels fall back to info.
func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
