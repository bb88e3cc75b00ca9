// Package wlrrandr reads the compositor output state through wlr-randr
package wlrrandr

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// OutputName is the preferred output, any enabled output is used when it is absent.
var OutputName = "HDMI-A-1"

type Output struct {
	Name      string  `json:"name"`
	Enabled   bool    `json:"enabled"`
	Modes     []Mode  `json:"modes"`
	Transform string  `json:"transform"`
	Scale     float64 `json:"scale"`
}

type Mode struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Refresh   float64 `json:"refresh"`
	Preferred bool    `json:"preferred"`
	Current   bool    `json:"current"`
}

var ErrNoCurrentMode = errors.New("no enabled output with a current mode")

// GetCurrentMode returns the width and height of the current mode of the display, accounting
// for a rotated output transform.
func GetCurrentMode() (int, int, error) {
	out, err := exec.Command("wlr-randr", "--json").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return parseCurrentMode(out, OutputName)
}

func parseCurrentMode(data []byte, preferred string) (int, int, error) {
	var outputs []Output
	if err := json.Unmarshal(data, &outputs); err != nil {
		return 0, 0, fmt.Errorf("failed to unmarshal wlr-randr output: %w", err)
	}

	var chosen *Output
	for i := range outputs {
		if !outputs[i].Enabled {
			continue
		}
		if outputs[i].Name == preferred {
			chosen = &outputs[i]
			break
		}
		if chosen == nil {
			chosen = &outputs[i]
		}
	}
	if chosen == nil {
		return 0, 0, ErrNoCurrentMode
	}

	for _, mode := range chosen.Modes {
		if !mode.Current {
			continue
		}
		switch chosen.Transform {
		case "90", "270", "flipped-90", "flipped-270":
			return mode.Height, mode.Width, nil
		}
		return mode.Width, mode.Height, nil
	}
	return 0, 0, ErrNoCurrentMode
}
