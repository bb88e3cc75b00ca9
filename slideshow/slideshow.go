// Package slideshow drives the photo slideshow: it owns the run state and advance timer, and
// renders the images the backend delivers onto the display surface.
package slideshow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/surface"
)

var ErrStopped = errors.New("slideshow is not running")

// Snapshot is the observable state published after every change. HTML is set only when the
// surface changed since the previous snapshot, that is when Sequence moved.
type Snapshot struct {
	State     string `json:"state"`
	Direction string `json:"direction"`
	Video     bool   `json:"video"`
	Sequence  int    `json:"sequence"`
	HTML      string `json:"html,omitempty"`
}

// Publisher receives snapshots from the event loop. Publish must not block.
type Publisher interface {
	Publish(snap Snapshot)
}

type Option func(*Slideshow)

func WithClock(c Clock) Option {
	return func(s *Slideshow) { s.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Slideshow) { s.rng = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *Slideshow) { s.publishers = append(s.publishers, p) }
}

type decodeResult struct {
	decoded Decoded
	err     error
}

// Slideshow is the single thread of control of the slideshow. Every state change happens on the
// goroutine running Run.
type Slideshow struct {
	cfg        *config.Config
	backend    Backend
	surface    *surface.Surface
	clock      Clock
	rng        *rand.Rand
	publishers []Publisher

	machine  *Machine
	pipeline *Pipeline

	events  chan Event
	decoded chan decodeResult
	done    chan struct{}

	ctx       context.Context
	rendered  int
	published int
}

func New(cfg *config.Config, backend Backend, surf *surface.Surface, opts ...Option) *Slideshow {
	s := &Slideshow{
		cfg:     cfg,
		backend: backend,
		surface: surf,
		events:  make(chan Event, 32),
		decoded: make(chan decodeResult, 4),
		done:    make(chan struct{}),

		published: -1,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = NewMachine(cfg, backend, s.clock, s.startDecode)
	s.pipeline = NewPipeline(cfg, surf, NewSelector(cfg, s.rng), backend)
	return s
}

// Post hands an event to the event loop.
func (s *Slideshow) Post(ctx context.Context, ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled. When credentials are missing nothing is ever
// requested from the backend and inbound events are dropped.
func (s *Slideshow) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.machine.Suspend()

	s.ctx = ctx

	enabled := true
	if err := s.cfg.CheckCredentials(); err != nil {
		slog.Error("slideshow not started", "source", s.cfg.Source, "error", err)
		enabled = false
	} else {
		slog.Info("registering slideshow config", "identifier", s.cfg.Identifier, "mode", s.cfg.Mode, "source", s.cfg.Source)
		s.machine.UpdateImageList()
	}
	s.publish()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping slideshow", "reason", ctx.Err())
			return nil
		case ev := <-s.events:
			if !enabled {
				slog.Debug("dropping event, slideshow not started", "event", ev)
				continue
			}
			s.machine.Handle(ev)
		case <-s.machine.TimerC():
			s.machine.Tick()
		case res := <-s.decoded:
			if res.err != nil {
				slog.Error("image not displayed", "error", res.err)
				continue
			}
			s.pipeline.Render(res.decoded)
			s.rendered++
		}
		s.publish()
	}
}

// startDecode decodes off the loop and posts the result back. A result that arrives after a
// suspend is still rendered.
func (s *Slideshow) startDecode(payload ImagePayload) {
	ctx := s.ctx
	go func() {
		d, err := s.pipeline.Decode(payload)
		select {
		case s.decoded <- decodeResult{decoded: d, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (s *Slideshow) publish() {
	if len(s.publishers) == 0 {
		return
	}
	snap := Snapshot{
		State:     s.machine.State().String(),
		Direction: s.machine.LastDirection().String(),
		Video:     s.machine.PlayingVideo(),
		Sequence:  s.rendered,
	}
	if s.published != s.rendered {
		html, err := s.surface.HTML(s.ctx)
		if err != nil {
			slog.Error("failed to render surface", "error", err)
			return
		}
		snap.HTML = html
		s.published = s.rendered
	}
	for _, p := range s.publishers {
		p.Publish(snap)
	}
}
