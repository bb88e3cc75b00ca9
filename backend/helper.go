package backend

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/slideshow"
	"github.com/aouyang1/immichslideshow/store"
	"github.com/aouyang1/immichslideshow/util"
)

const (
	listTimeout  = 5 * time.Minute
	fetchTimeout = time.Minute
	inboxSize    = 32
)

// History records the images that were shown.
type History interface {
	InsertHistory(ctx context.Context, entry store.HistoryEntry) error
}

type requestKind int

const (
	requestRegister requestKind = iota
	requestNext
	requestPrevious
	requestShown
	requestSuspend
	requestResume
)

func (k requestKind) String() string {
	switch k {
	case requestRegister:
		return "register"
	case requestNext:
		return "next"
	case requestPrevious:
		return "previous"
	case requestShown:
		return "shown"
	case requestSuspend:
		return "suspend"
	case requestResume:
		return "resume"
	default:
		return "unknown"
	}
}

type request struct {
	kind requestKind
	cfg  config.Config
	path string
}

// Helper implements slideshow.Backend. Requests are queued and processed in order by Run, and
// inbound events are handed to the sink.
type Helper struct {
	source  Source
	history History
	sink    func(slideshow.Event)
	rng     *rand.Rand
	now     func() time.Time

	inbox chan request

	// owned by Run
	cfg     *config.Config
	assets  []Asset
	pos     int
	rewound bool
	asked   bool
}

func NewHelper(source Source, history History, sink func(slideshow.Event)) *Helper {
	return &Helper{
		source:  source,
		history: history,
		sink:    sink,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:     time.Now,
		inbox:   make(chan request, inboxSize),
		pos:     -1,
	}
}

func (h *Helper) RegisterConfig(cfg config.Config) {
	h.send(request{kind: requestRegister, cfg: cfg})
}

func (h *Helper) RequestNext() { h.send(request{kind: requestNext}) }

func (h *Helper) RequestPrevious() { h.send(request{kind: requestPrevious}) }

func (h *Helper) ImageShown(path string) {
	h.send(request{kind: requestShown, path: path})
}

func (h *Helper) Suspend() { h.send(request{kind: requestSuspend}) }

func (h *Helper) Resume() { h.send(request{kind: requestResume}) }

// send never blocks the caller. Requests beyond the inbox capacity are dropped.
func (h *Helper) send(r request) {
	select {
	case h.inbox <- r:
	default:
		slog.Warn("backend inbox full, dropping request", "request", r.kind)
	}
}

// Run processes requests until ctx is cancelled.
func (h *Helper) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-h.inbox:
			h.handle(ctx, r)
		}
	}
}

func (h *Helper) handle(ctx context.Context, r request) {
	switch r.kind {
	case requestRegister:
		h.register(ctx, r.cfg)
	case requestNext:
		h.step(ctx, false)
	case requestPrevious:
		h.step(ctx, true)
	case requestShown:
		h.recordShown(ctx, r.path)
	case requestSuspend:
		slog.Debug("slideshow suspended")
	case requestResume:
		h.rewound = false
		slog.Debug("slideshow resumed")
	}
}

func (h *Helper) register(ctx context.Context, cfg config.Config) {
	h.cfg = &cfg
	h.asked = false

	listCtx, cancel := context.WithTimeout(ctx, listTimeout)
	assets, err := h.source.ListAssets(listCtx, cfg)
	cancel()
	if err != nil {
		slog.Error("failed to build image list", "mode", cfg.Mode, "error", err)
		return
	}

	h.assets = h.filterAndSort(assets, cfg)
	h.pos = -1
	h.rewound = false

	slog.Info("image list built", "identifier", cfg.Identifier, "count", len(h.assets), "listed", len(assets), "sortBy", cfg.SortImagesBy)
	h.sink(slideshow.BackendReady{Identifier: cfg.Identifier})
}

func (h *Helper) filterAndSort(assets []Asset, cfg config.Config) []Asset {
	exts := cfg.Extensions()
	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if !util.HasExtension(exts, a.Path) {
			continue
		}
		out = append(out, a)
	}

	switch cfg.SortImagesBy {
	case "name":
		slices.SortStableFunc(out, func(a, b Asset) int {
			return strings.Compare(strings.ToLower(path.Base(a.Path)), strings.ToLower(path.Base(b.Path)))
		})
	case "created":
		slices.SortStableFunc(out, func(a, b Asset) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case "modified":
		slices.SortStableFunc(out, func(a, b Asset) int { return a.ModifiedAt.Compare(b.ModifiedAt) })
	case "random":
		h.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	default:
		return out
	}
	if cfg.SortImagesDescending {
		slices.Reverse(out)
	}
	return out
}

// step moves through the list with wrap-around and displays the image. A previous step is
// followed by the next requests of the resume it triggers, so every next request up to that
// resume is absorbed.
func (h *Helper) step(ctx context.Context, previous bool) {
	if h.cfg == nil {
		if !h.asked {
			h.asked = true
			slog.Info("image requested before config registration, asking for config")
			h.sink(slideshow.ConfigRegistered{})
		}
		return
	}

	if !previous && h.rewound {
		slog.Debug("skipping next request after previous")
		return
	}

	n := len(h.assets)
	if n == 0 {
		slog.Warn("no images to display", "identifier", h.cfg.Identifier)
		return
	}

	if previous {
		if h.pos < 0 {
			h.pos = n - 1
		} else {
			h.pos = (h.pos - 1 + n) % n
		}
		h.rewound = true
	} else {
		h.pos = (h.pos + 1) % n
	}
	h.display(ctx, h.assets[h.pos])
}

func (h *Helper) display(ctx context.Context, asset Asset) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	data, err := h.source.FetchAsset(fetchCtx, asset)
	cancel()
	if err != nil {
		slog.Error("failed to fetch image", "path", asset.Path, "error", err)
		return
	}

	exifInfo := asset.ExifInfo
	if exifInfo == nil {
		exifInfo = exifFromImage(data)
	}

	h.sink(slideshow.DisplayImage{Payload: slideshow.ImagePayload{
		Identifier: h.cfg.Identifier,
		Path:       asset.Path,
		Index:      h.pos + 1,
		Total:      len(h.assets),
		Data:       data,
		ExifInfo:   exifInfo,
		People:     asset.People,
	}})
}

func (h *Helper) recordShown(ctx context.Context, imagePath string) {
	slog.Debug("image shown", "path", imagePath)
	if h.history == nil {
		return
	}
	identifier := ""
	if h.cfg != nil {
		identifier = h.cfg.Identifier
	}
	if err := h.history.InsertHistory(ctx, store.HistoryEntry{
		Path:       imagePath,
		Identifier: identifier,
		ShownAt:    h.now(),
	}); err != nil {
		slog.Warn("failed to record shown image", "path", imagePath, "error", err)
	}
}
