package wlrrandr

import (
	"errors"
	"testing"
)

const sample = `[
  {"name": "eDP-1", "enabled": true, "transform": "normal",
   "modes": [{"width": 1280, "height": 800, "current": true}]},
  {"name": "HDMI-A-1", "enabled": true, "transform": "90",
   "modes": [{"width": 3840, "height": 2160, "preferred": true},
             {"width": 1920, "height": 1080, "current": true}]}
]`

func TestParseCurrentMode(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		preferred string
		wantW     int
		wantH     int
		wantErr   error
	}{
		{"preferred rotated output", sample, "HDMI-A-1", 1080, 1920, nil},
		{"falls back to first enabled", sample, "DP-3", 1280, 800, nil},
		{"disabled outputs", `[{"name": "HDMI-A-1", "enabled": false}]`, "HDMI-A-1", 0, 0, ErrNoCurrentMode},
		{"no current mode", `[{"name": "HDMI-A-1", "enabled": true, "modes": [{"width": 1, "height": 1}]}]`, "HDMI-A-1", 0, 0, ErrNoCurrentMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := parseCurrentMode([]byte(tt.data), tt.preferred)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseCurrentModeInvalidJSON(t *testing.T) {
	if _, _, err := parseCurrentMode([]byte("not json"), OutputName); err == nil {
		t.Error("expected error for invalid json")
	}
}
