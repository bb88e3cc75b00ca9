// Package models tracks all api models for request and responses
package models

import (
	"encoding/json"

	"github.com/aouyang1/immichslideshow/store"
)

type CommandResponse struct {
	Command string `json:"command"`
	Message string `json:"message"`
}

type VideoResponse struct {
	Playing bool `json:"playing"`
}

type NotificationRequest struct {
	Notification string          `json:"notification"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type NotificationResponse struct {
	Notification string `json:"notification"`
	Event        string `json:"event"`
}

type StateResponse struct {
	State     string `json:"state"`
	Direction string `json:"direction"`
	Video     bool   `json:"video"`
	Sequence  int    `json:"sequence"`
}

type HistoryResponse struct {
	Entries []store.HistoryEntry `json:"entries"`
	Limit   int                  `json:"limit"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
