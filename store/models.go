package store

import "time"

type HistoryEntry struct {
	Path       string    `json:"path"`
	Identifier string    `json:"identifier"`
	ShownAt    time.Time `json:"shown_at"`
}
