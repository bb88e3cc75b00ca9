package client

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/aouyang1/immichslideshow/api"
	"github.com/aouyang1/immichslideshow/slideshow"
	"github.com/aouyang1/immichslideshow/store"
)

type recordingController struct {
	mu     sync.Mutex
	events []slideshow.Event
}

func (r *recordingController) Post(ctx context.Context, ev slideshow.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingController) posted() []slideshow.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]slideshow.Event(nil), r.events...)
}

type staticHistory []store.HistoryEntry

func (s staticHistory) GetHistory(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	if limit > 0 && limit < len(s) {
		return s[:limit], nil
	}
	return s, nil
}

func newTestClient(t *testing.T, history api.HistoryReader) (*SlideshowClient, *recordingController, *api.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := &recordingController{}
	hub := api.NewHub()
	ws, err := api.NewWebServer(ctrl, history, hub)
	if err != nil {
		t.Fatalf("NewWebServer() error = %v", err)
	}
	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(srv.Close)
	return NewSlideshowClient(srv.URL), ctrl, hub
}

func TestSlideshowClient(t *testing.T) {
	shown := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	history := staticHistory{
		{Path: "b.jpg", Identifier: "mirror", ShownAt: shown.Add(time.Minute)},
		{Path: "a.jpg", Identifier: "mirror", ShownAt: shown},
	}
	sc, ctrl, hub := newTestClient(t, history)
	ctx := context.Background()

	if err := sc.Command(ctx, "next"); err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if err := sc.SetVideo(ctx, true); err != nil {
		t.Fatalf("SetVideo() error = %v", err)
	}
	resp, err := sc.Notify(ctx, slideshow.NotificationReady, json.RawMessage(`{"identifier":"mirror"}`))
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if resp.Event != "slideshow.BackendReady" {
		t.Errorf("Notify() event = %q, want slideshow.BackendReady", resp.Event)
	}

	want := []slideshow.Event{
		slideshow.Next{},
		slideshow.VideoState{Playing: true},
		slideshow.BackendReady{Identifier: "mirror"},
	}
	if diff := cmp.Diff(want, ctrl.posted()); diff != "" {
		t.Errorf("posted events mismatch (-want +got):\n%s", diff)
	}

	err = sc.Command(ctx, "rewind")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Command(rewind) error = %v, want unknown command", err)
	}

	if _, err := sc.GetState(ctx); err == nil {
		t.Error("GetState() before any snapshot should fail")
	}
	hub.Publish(slideshow.Snapshot{State: "running", Direction: "previous", Video: true, Sequence: 7})
	state, err := sc.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.State != "running" || state.Direction != "previous" || !state.Video || state.Sequence != 7 {
		t.Errorf("GetState() = %+v", state)
	}

	entries, err := sc.GetHistory(ctx, 1)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "b.jpg" {
		t.Errorf("GetHistory() = %+v", entries)
	}
}
