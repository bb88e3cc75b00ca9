package slideshow

import (
	"log/slog"
	"time"

	"github.com/aouyang1/immichslideshow/config"
)

type State int

const (
	Suspended State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "suspended"
}

type Direction int

const (
	DirectionNone Direction = iota
	DirectionNext
	DirectionPrevious
)

func (d Direction) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	default:
		return "none"
	}
}

// Machine is the run state of the slideshow. The advance timer is armed if and only if the
// machine is running. It is not safe for concurrent use; the event loop owns it.
type Machine struct {
	cfg     *config.Config
	backend Backend
	clock   Clock
	display func(ImagePayload)

	state         State
	timer         Timer
	lastDirection Direction
	playingVideo  bool
}

func NewMachine(cfg *config.Config, backend Backend, clock Clock, display func(ImagePayload)) *Machine {
	if clock == nil {
		clock = realClock{}
	}
	return &Machine{
		cfg:     cfg,
		backend: backend,
		clock:   clock,
		display: display,
	}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) LastDirection() Direction { return m.lastDirection }

func (m *Machine) PlayingVideo() bool { return m.playingVideo }

// TimerC is the channel of the armed advance timer, nil while suspended.
func (m *Machine) TimerC() <-chan time.Time {
	if m.timer == nil {
		return nil
	}
	return m.timer.C()
}

// Suspend cancels the advance timer. It is idempotent.
func (m *Machine) Suspend() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.state = Suspended
	m.backend.Suspend()
}

// Resume suspends first so no stale timer survives, then advances immediately and keeps
// advancing every slideshow interval.
func (m *Machine) Resume() {
	m.Suspend()

	if m.cfg.ChangeImageOnResume {
		m.requestImage(DirectionNext)
	}
	m.state = Running
	m.Tick()

	m.backend.Resume()
}

// Tick requests the next image and re-arms the timer. The timer is armed only after the
// request is issued so ticks never overlap.
func (m *Machine) Tick() {
	if m.state != Running {
		return
	}
	m.requestImage(DirectionNext)
	m.timer = m.clock.NewTimer(m.cfg.Interval())
}

// UpdateImageList sends the configuration to the backend so it builds a fresh image list.
func (m *Machine) UpdateImageList() {
	m.backend.RegisterConfig(*m.cfg)
}

func (m *Machine) requestImage(direction Direction) {
	m.lastDirection = direction
	if direction == DirectionPrevious {
		m.backend.RequestPrevious()
		return
	}
	m.backend.RequestNext()
}

// Handle reacts to one inbound event.
func (m *Machine) Handle(ev Event) {
	switch e := ev.(type) {
	case BackendReady:
		if e.Identifier != m.cfg.Identifier {
			slog.Debug("ignoring ready for another instance", "identifier", e.Identifier)
			return
		}
		m.resumeUnlessVideo()
	case ConfigRegistered:
		m.UpdateImageList()
	case Play:
		m.resumeUnlessVideo()
	case ImageUpdate:
		slog.Info("changing background")
		m.Suspend()
		m.resumeUnlessVideo()
	case Next:
		m.resumeUnlessVideo()
	case Previous:
		m.requestImage(DirectionPrevious)
		m.resumeUnlessVideo()
	case Pause:
		m.Suspend()
	case DisplayImage:
		if e.Payload.Identifier != "" && e.Payload.Identifier != m.cfg.Identifier {
			slog.Debug("ignoring image for another instance", "identifier", e.Payload.Identifier, "path", e.Payload.Path)
			return
		}
		m.display(e.Payload)
	case VideoState:
		m.playingVideo = e.Playing
		if e.Playing {
			m.Suspend()
			return
		}
		m.Resume()
	case Unknown:
		slog.Info("received an unexpected notification", "notification", e.Name)
	default:
		slog.Warn("unhandled event", "event", ev)
	}
}

func (m *Machine) resumeUnlessVideo() {
	if m.playingVideo {
		return
	}
	m.Resume()
}
