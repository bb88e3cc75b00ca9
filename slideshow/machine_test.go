package slideshow

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aouyang1/immichslideshow/config"
)

func newTestMachine(cfg *config.Config) (*Machine, *fakeBackend, *fakeClock, *[]ImagePayload) {
	backend := &fakeBackend{}
	clock := &fakeClock{}
	var displayed []ImagePayload
	m := NewMachine(cfg, backend, clock, func(p ImagePayload) { displayed = append(displayed, p) })
	return m, backend, clock, &displayed
}

func TestMachineResume(t *testing.T) {
	cfg := config.Default()
	cfg.SlideshowSpeed = 5000
	m, backend, clock, _ := newTestMachine(cfg)

	if m.State() != Suspended {
		t.Fatalf("initial state = %v, want suspended", m.State())
	}
	if m.TimerC() != nil {
		t.Fatal("timer armed while suspended")
	}

	m.Resume()
	if m.State() != Running {
		t.Fatalf("state = %v, want running", m.State())
	}
	if clock.armed() != 1 {
		t.Fatalf("armed timers = %d, want 1", clock.armed())
	}
	if clock.last().d != 5*time.Second {
		t.Errorf("timer duration = %v, want 5s", clock.last().d)
	}
	if diff := cmp.Diff([]string{"suspend", "next", "resume"}, backend.calls); diff != "" {
		t.Errorf("backend calls mismatch (-want +got):\n%s", diff)
	}

	m.Resume()
	m.Resume()
	if clock.armed() != 1 {
		t.Errorf("armed timers after repeated resume = %d, want 1", clock.armed())
	}
}

func TestMachineResumeChangesImage(t *testing.T) {
	cfg := config.Default()
	cfg.ChangeImageOnResume = true
	m, backend, _, _ := newTestMachine(cfg)

	m.Resume()
	if got := backend.count("next"); got != 2 {
		t.Errorf("next requests = %d, want 2", got)
	}
}

func TestMachineSuspend(t *testing.T) {
	m, backend, clock, _ := newTestMachine(config.Default())

	m.Handle(Pause{})
	m.Handle(Pause{})
	if m.State() != Suspended || clock.armed() != 0 {
		t.Fatalf("state = %v, armed = %d", m.State(), clock.armed())
	}
	if backend.count("next") != 0 {
		t.Error("pause requested an image")
	}

	m.Resume()
	m.Handle(Pause{})
	if m.State() != Suspended || clock.armed() != 0 || m.TimerC() != nil {
		t.Errorf("after pause: state = %v, armed = %d", m.State(), clock.armed())
	}
}

func TestMachineTick(t *testing.T) {
	m, backend, clock, _ := newTestMachine(config.Default())

	m.Tick()
	if backend.count("next") != 0 || len(clock.timers) != 0 {
		t.Fatal("tick while suspended advanced")
	}

	m.Resume()
	backend.reset()
	m.Tick()
	if backend.count("next") != 1 {
		t.Errorf("next requests = %d, want 1", backend.count("next"))
	}
	if len(clock.timers) != 2 {
		t.Errorf("timers created = %d, want 2", len(clock.timers))
	}
}

func TestMachineHandle(t *testing.T) {
	tests := []struct {
		name      string
		video     bool
		event     Event
		wantState State
		wantCalls []string
		wantDir   Direction
	}{
		{
			name:      "ready for this instance",
			event:     BackendReady{Identifier: "immichslideshow"},
			wantState: Running,
			wantCalls: []string{"suspend", "next", "resume"},
			wantDir:   DirectionNext,
		},
		{
			name:      "ready for another instance",
			event:     BackendReady{Identifier: "other"},
			wantState: Suspended,
		},
		{
			name:      "config registered",
			event:     ConfigRegistered{},
			wantState: Suspended,
			wantCalls: []string{"register"},
		},
		{
			name:      "play",
			event:     Play{},
			wantState: Running,
			wantCalls: []string{"suspend", "next", "resume"},
			wantDir:   DirectionNext,
		},
		{
			name:      "image update",
			event:     ImageUpdate{},
			wantState: Running,
			wantCalls: []string{"suspend", "suspend", "next", "resume"},
			wantDir:   DirectionNext,
		},
		{
			name:      "previous",
			event:     Previous{},
			wantState: Running,
			wantCalls: []string{"previous", "suspend", "next", "resume"},
			wantDir:   DirectionNext,
		},
		{
			name:      "previous while video plays",
			video:     true,
			event:     Previous{},
			wantState: Suspended,
			wantCalls: []string{"previous"},
			wantDir:   DirectionPrevious,
		},
		{
			name:      "play while video plays",
			video:     true,
			event:     Play{},
			wantState: Suspended,
		},
		{
			name:      "next while video plays",
			video:     true,
			event:     Next{},
			wantState: Suspended,
		},
		{
			name:      "unknown",
			event:     Unknown{Name: "SOMETHING_ELSE"},
			wantState: Suspended,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, backend, _, _ := newTestMachine(config.Default())
			m.playingVideo = tt.video

			m.Handle(tt.event)

			if m.State() != tt.wantState {
				t.Errorf("state = %v, want %v", m.State(), tt.wantState)
			}
			if diff := cmp.Diff(tt.wantCalls, backend.calls); diff != "" {
				t.Errorf("backend calls mismatch (-want +got):\n%s", diff)
			}
			if m.LastDirection() != tt.wantDir {
				t.Errorf("direction = %v, want %v", m.LastDirection(), tt.wantDir)
			}
		})
	}
}

func TestMachineVideoState(t *testing.T) {
	m, _, clock, _ := newTestMachine(config.Default())
	m.Resume()

	m.Handle(VideoState{Playing: true})
	if m.State() != Suspended || clock.armed() != 0 {
		t.Fatalf("video playing: state = %v, armed = %d", m.State(), clock.armed())
	}
	m.Handle(Play{})
	if m.State() != Suspended {
		t.Fatal("play resumed while a video plays")
	}

	m.Handle(VideoState{Playing: false})
	if m.State() != Running || clock.armed() != 1 {
		t.Errorf("video stopped: state = %v, armed = %d", m.State(), clock.armed())
	}
}

func TestMachineDisplayImage(t *testing.T) {
	m, _, _, displayed := newTestMachine(config.Default())

	m.Handle(DisplayImage{Payload: ImagePayload{Path: "/untagged.jpg"}})
	m.Handle(DisplayImage{Payload: ImagePayload{Identifier: "immichslideshow", Path: "/mine.jpg"}})
	m.Handle(DisplayImage{Payload: ImagePayload{Identifier: "other", Path: "/theirs.jpg"}})

	var paths []string
	for _, p := range *displayed {
		paths = append(paths, p.Path)
	}
	if diff := cmp.Diff([]string{"/untagged.jpg", "/mine.jpg"}, paths); diff != "" {
		t.Errorf("displayed mismatch (-want +got):\n%s", diff)
	}
}
