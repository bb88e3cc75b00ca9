// Package api is the main api web server
package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aouyang1/immichslideshow/api/models"
	"github.com/aouyang1/immichslideshow/slideshow"
	"github.com/aouyang1/immichslideshow/store"
)

//go:embed web/templates/* web/static/*
var webFiles embed.FS

const shutdownTimeout = 5 * time.Second

// Controller accepts events for the slideshow event loop.
type Controller interface {
	Post(ctx context.Context, ev slideshow.Event) error
}

type HistoryReader interface {
	GetHistory(ctx context.Context, limit int) ([]store.HistoryEntry, error)
}

type WebServer struct {
	router   *gin.Engine
	show     Controller
	history  HistoryReader
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWebServer(show Controller, history HistoryReader, hub *Hub) (*WebServer, error) {
	router := gin.Default()

	ws := &WebServer{
		router:  router,
		show:    show,
		history: history,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}

	// Setup routes
	if err := ws.setupRoutes(); err != nil {
		return nil, err
	}

	return ws, nil
}

func (ws *WebServer) setupRoutes() error {
	// Create filesystem for static files (strip "web/" prefix)
	staticFS, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}

	// Create filesystem for templates
	templatesFS, err := fs.Sub(webFiles, "web/templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	// Serve static files from embedded filesystem
	ws.router.StaticFS("static", http.FS(staticFS))

	// Serve index.html from embedded filesystem
	ws.router.GET("/", func(c *gin.Context) {
		data, err := fs.ReadFile(templatesFS, "index.html")
		if err != nil {
			slog.Error("failed to read index.html", "error", err)
			c.String(http.StatusInternalServerError, "Failed to load index.html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	})
	ws.router.GET("/surface", ws.handleSurface)
	ws.router.GET("/ws", ws.handleStream)

	// API routes
	ws.router.GET("/state", ws.handleGetState)
	ws.router.POST("/slideshow/:command", ws.handleCommand)
	ws.router.PUT("/video/:state", ws.handleVideo)
	ws.router.POST("/notification", ws.handleNotification)
	ws.router.GET("/history", ws.handleHistory)
	return nil
}

func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start serves until ctx is cancelled, then shuts the server down.
func (ws *WebServer) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: ws.router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting web server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var commands = map[string]slideshow.Event{
	"play":     slideshow.Play{},
	"pause":    slideshow.Pause{},
	"next":     slideshow.Next{},
	"previous": slideshow.Previous{},
	"update":   slideshow.ImageUpdate{},
}

func (ws *WebServer) handleCommand(c *gin.Context) {
	command := c.Param("command")
	ev, ok := commands[command]
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("unknown command %q, must be one of play, pause, next, previous, update", command)})
		return
	}

	if err := ws.show.Post(c.Request.Context(), ev); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: fmt.Sprintf("Failed to send command: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.CommandResponse{Command: command, Message: "Command sent"})
}

func (ws *WebServer) handleVideo(c *gin.Context) {
	state := c.Param("state")
	if state != "0" && state != "1" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "state must be 0 (stopped) or 1 (playing)"})
		return
	}

	playing := state == "1"
	if err := ws.show.Post(c.Request.Context(), slideshow.VideoState{Playing: playing}); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: fmt.Sprintf("Failed to update video state: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.VideoResponse{Playing: playing})
}

func (ws *WebServer) handleNotification(c *gin.Context) {
	var req models.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	if req.Notification == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "notification is required"})
		return
	}

	ev, err := slideshow.ParseNotification(req.Notification, req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if err := ws.show.Post(c.Request.Context(), ev); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: fmt.Sprintf("Failed to send notification: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.NotificationResponse{
		Notification: req.Notification,
		Event:        fmt.Sprintf("%T", ev),
	})
}

func (ws *WebServer) handleGetState(c *gin.Context) {
	snap, ok := ws.hub.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "slideshow has not started"})
		return
	}
	c.JSON(http.StatusOK, models.StateResponse{
		State:     snap.State,
		Direction: snap.Direction,
		Video:     snap.Video,
		Sequence:  snap.Sequence,
	})
}

func (ws *WebServer) handleHistory(c *gin.Context) {
	if ws.history == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "history is not recorded"})
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid limit parameter"})
			return
		}
		limit = l
	}

	entries, err := ws.history.GetHistory(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get history: %v", err)})
		return
	}
	if entries == nil {
		entries = []store.HistoryEntry{}
	}

	c.JSON(http.StatusOK, models.HistoryResponse{Entries: entries, Limit: limit})
}
