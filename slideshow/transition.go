package slideshow

import (
	"math/rand/v2"

	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/surface"
)

// PanSlide is the pan animation that scrolls along the overflowing axis.
const PanSlide = "slide"

type Axis int

const (
	AxisNone Axis = iota
	AxisHorizontal
	AxisVertical
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "none"
	}
}

// Pan is a selected background pan animation. Axis is AxisNone for named animations.
type Pan struct {
	Name    string
	Axis    Axis
	Inverse bool
}

// Class is the CSS class applying the animation.
func (p Pan) Class() string {
	switch p.Axis {
	case AxisHorizontal:
		if p.Inverse {
			return "slideHInv"
		}
		return "slideH"
	case AxisVertical:
		if p.Inverse {
			return "slideVInv"
		}
		return "slideV"
	default:
		return p.Name
	}
}

// Selector picks transitions and pan animations at random from the configured lists.
type Selector struct {
	cfg *config.Config
	rng *rand.Rand
}

func NewSelector(cfg *config.Config, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{cfg: cfg, rng: rng}
}

// Transition picks a transition effect, false when transitions are disabled.
func (s *Selector) Transition() (string, bool) {
	if !s.cfg.TransitionEnabled() {
		return "", false
	}
	return s.cfg.Transitions[s.rng.IntN(len(s.cfg.Transitions))], true
}

// PanAnimation picks a pan animation for an image of the given size, false when pan animations
// are disabled. The slide animation scrolls along the axis where the image overflows the
// viewport.
func (s *Selector) PanAnimation(width, height int, viewport surface.Viewport) (Pan, bool) {
	if !s.cfg.PanEnabled() {
		return Pan{}, false
	}
	name := s.cfg.Animations[s.rng.IntN(len(s.cfg.Animations))]
	if name != PanSlide {
		return Pan{Name: name}, true
	}

	pan := Pan{Name: name, Axis: panAxis(width, height, viewport)}
	pan.Inverse = s.rng.IntN(2) == 0
	return pan, true
}

func panAxis(width, height int, viewport surface.Viewport) Axis {
	if width <= 0 || height <= 0 || viewport.Width <= 0 || viewport.Height <= 0 {
		return AxisVertical
	}
	w, h := float64(width), float64(height)
	vw, vh := float64(viewport.Width), float64(viewport.Height)

	adjustedWidth := w * vh / h
	adjustedHeight := h * vw / w
	if adjustedWidth/vw > adjustedHeight/vh {
		return AxisHorizontal
	}
	return AxisVertical
}
