package slideshow

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/surface"
)

var ErrEmptyImage = errors.New("image payload has no data")

// Decoded is an image payload whose data decoded successfully.
type Decoded struct {
	Payload ImagePayload
	Width   int
	Height  int
	Format  string
}

// Pipeline renders image payloads onto the surface. It is the only writer of the surface.
type Pipeline struct {
	cfg       *config.Config
	surface   *surface.Surface
	selector  *Selector
	formatter *InfoFormatter
	backend   Backend

	seq int
}

func NewPipeline(cfg *config.Config, surf *surface.Surface, selector *Selector, backend Backend) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		surface:   surf,
		selector:  selector,
		formatter: NewInfoFormatter(cfg.ImageInfo, cfg.ImageInfoNoFileExt),
		backend:   backend,
	}
}

// Decode decodes the payload data. It blocks and does not touch the surface.
func (p *Pipeline) Decode(payload ImagePayload) (Decoded, error) {
	if len(payload.Data) == 0 {
		return Decoded{}, ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(payload.Data))
	if err != nil {
		return Decoded{}, fmt.Errorf("unable to decode image %s: %w", payload.Path, err)
	}
	bounds := img.Bounds()
	return Decoded{
		Payload: payload,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Format:  format,
	}, nil
}

// Render transitions a decoded image onto the surface and acknowledges it to the backend.
func (p *Pipeline) Render(d Decoded) {
	images := p.surface.Images

	if len(images.Children) >= surface.MaxImages {
		images.RemoveFirst()
	}
	// the previous image fades out and is removed on the next cycle
	if n := len(images.Children); n > 0 {
		images.Children[n-1].SetStyle("opacity", "0")
	}

	p.seq++
	wrapper := surface.NewElement("div", "transition")
	wrapper.SetAttr("data-seq", strconv.Itoa(p.seq))
	if name, ok := p.selector.Transition(); ok {
		wrapper.SetStyle("animation-duration", p.cfg.TransitionSpeed)
		wrapper.SetStyle("transition", "opacity "+p.cfg.TransitionSpeed+" ease-in-out")
		wrapper.SetStyle("animation-name", name)
		wrapper.SetStyle("animation-timing-function", p.cfg.TransitionTimingFunction)
	}

	img := surface.NewElement("div", "image")
	img.SetStyle("background-size", p.cfg.BackgroundSize)
	img.SetStyle("background-position", p.cfg.BackgroundPosition)
	img.SetStyle("background-image", dataURL(d))

	p.surface.RestartProgress()

	width, height := DisplaySize(d.Payload.orientation(), d.Width, d.Height)
	if pan, ok := p.selector.PanAnimation(width, height, p.surface.Capabilities.Viewport); ok {
		img.SetStyle("animation-duration", p.cfg.BackgroundAnimationDuration)
		img.SetStyle("animation-delay", p.cfg.TransitionSpeed)
		if pan.Axis != AxisNone {
			img.SetStyle("background-position", "")
			img.SetStyle("animation-iteration-count", p.cfg.BackgroundAnimationLoopCount)
			img.SetStyle("background-size", "cover")
		}
		img.AddClass(pan.Class())
	}

	if p.cfg.ShowImageInfo {
		info := p.formatter.Format(d.Payload, ResolveDate(d.Payload.ExifInfo))
		p.surface.SetInfo(info.Header, info.Lines)
	}

	if !p.surface.Capabilities.NativeExifOrientation {
		img.SetStyle("transform", TransformFor(d.Payload.orientation()))
	}

	wrapper.Append(img)
	images.Append(wrapper)

	slog.Debug("image displayed", "path", d.Payload.Path, "index", d.Payload.Index, "total", d.Payload.Total, "width", d.Width, "height", d.Height)
	p.backend.ImageShown(d.Payload.Path)
}

func dataURL(d Decoded) string {
	format := d.Format
	if format == "" {
		format = "jpeg"
	}
	return fmt.Sprintf(`url("data:image/%s;base64,%s")`, format, base64.StdEncoding.EncodeToString(d.Payload.Data))
}
