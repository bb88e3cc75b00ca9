package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "WARN", want: slog.LevelWarn},
		{level: " error ", want: slog.LevelError},
		{level: "verbose", want: slog.LevelInfo},
		{level: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogging(tt.level)
			h := slog.Default().Handler()
			if !h.Enabled(context.Background(), tt.want) {
				t.Errorf("level %v not enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && h.Enabled(context.Background(), tt.want-1) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}

func TestServeOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().String("addr", "", "")
	cmd.Flags().Bool("probe-display", false, "")
	cmd.Flags().String("log-level", "", "")

	if got := serveOverrides(cmd); len(got) != 0 {
		t.Errorf("serveOverrides() without flags = %v, want empty", got)
	}

	if err := cmd.Flags().Parse([]string{"--addr", ":9090", "--probe-display", "--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"serverAddr":   ":9090",
		"probeDisplay": true,
		"logLevel":     "debug",
	}
	if diff := cmp.Diff(want, serveOverrides(cmd)); diff != "" {
		t.Errorf("serveOverrides() mismatch (-want +got):\n%s", diff)
	}
}
