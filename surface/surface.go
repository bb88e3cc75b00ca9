package surface

import (
	"fmt"
	"log/slog"

	"github.com/aouyang1/immichslideshow/wlrrandr"
)

// MaxImages is the number of transition wrappers kept in the images container, the one fading
// out and the one visible.
const MaxImages = 2

// Viewport is the size of the display the slideshow fills.
type Viewport struct {
	Width  int
	Height int
}

// Capabilities are probed once at startup.
type Capabilities struct {
	Viewport Viewport
	// NativeExifOrientation is true when the renderer applies EXIF orientation itself.
	NativeExifOrientation bool
}

// ProbeCapabilities resolves the surface capabilities. When probe is set the viewport is read
// from the compositor's current output mode, falling back to the configured one.
func ProbeCapabilities(configured Viewport, nativeExif bool, probe bool) Capabilities {
	caps := Capabilities{Viewport: configured, NativeExifOrientation: nativeExif}
	if !probe {
		return caps
	}

	width, height, err := wlrrandr.GetCurrentMode()
	if err != nil {
		slog.Warn("unable to probe display mode, using configured viewport", "width", configured.Width, "height", configured.Height, "error", err)
		return caps
	}
	caps.Viewport = Viewport{Width: width, Height: height}
	slog.Info("probed display viewport", "width", width, "height", height)
	return caps
}

// Options shape the static parts of the display tree.
type Options struct {
	ShowImageInfo     bool
	ImageInfoLocation string
	ShowProgressBar   bool
	// SlideshowSpeed in milliseconds drives the progress bar animation.
	SlideshowSpeed int
}

// Surface is the display tree: a root container holding the images container, an optional info
// overlay and an optional progress bar.
type Surface struct {
	Root     *Element
	Images   *Element
	Info     *Element
	Progress *Element

	Capabilities Capabilities
}

func New(opts Options, caps Capabilities) *Surface {
	s := &Surface{
		Root:         NewElement("div", "slideshow"),
		Images:       NewElement("div", "images"),
		Capabilities: caps,
	}
	s.Root.Append(s.Images)

	if opts.ShowImageInfo {
		s.Info = NewElement("div", "info", opts.ImageInfoLocation)
		s.Root.Append(s.Info)
	}

	if opts.ShowProgressBar {
		s.Progress = NewElement("div", "progress")
		inner := NewElement("div", "progress-inner")
		inner.SetStyle("display", "none")
		inner.SetStyle("animation", fmt.Sprintf("move %dms linear", opts.SlideshowSpeed))
		s.Progress.Append(inner)
		s.Root.Append(s.Progress)
	}

	return s
}

// ProgressInner is the animated element of the progress bar, nil when disabled.
func (s *Surface) ProgressInner() *Element {
	if s.Progress == nil || len(s.Progress.Children) == 0 {
		return nil
	}
	return s.Progress.Children[0]
}

// RestartProgress replaces the animated element with a fresh clone so the animation starts
// over, and makes it visible.
func (s *Surface) RestartProgress() {
	old := s.ProgressInner()
	if old == nil {
		return
	}
	fresh := old.Clone()
	s.Progress.Replace(old, fresh)
	fresh.SetStyle("display", "")
}

// SetInfo replaces the overlay content with a header and one line per entry.
func (s *Surface) SetInfo(header string, lines []string) {
	if s.Info == nil {
		return
	}
	s.Info.Clear()
	h := NewElement("header", "infoDivHeader")
	h.Append(NewText(header))
	s.Info.Append(h)
	for _, line := range lines {
		s.Info.Append(NewText(line), NewElement("br"))
	}
}
