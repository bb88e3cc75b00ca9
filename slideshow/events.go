package slideshow

import (
	"encoding/json"
	"fmt"

	"github.com/aouyang1/immichslideshow/config"
)

// Notification names of the external channel.
const (
	NotificationReady          = "IMMICHSLIDESHOW_READY"
	NotificationRegisterConfig = "IMMICHSLIDESHOW_REGISTER_CONFIG"
	NotificationPlay           = "IMMICHSLIDESHOW_PLAY"
	NotificationDisplayImage   = "IMMICHSLIDESHOW_DISPLAY_IMAGE"
	NotificationImageUpdate    = "IMMICHSLIDESHOW_IMAGE_UPDATE"
	NotificationNext           = "IMMICHSLIDESHOW_NEXT"
	NotificationPrevious       = "IMMICHSLIDESHOW_PREVIOUS"
	NotificationPause          = "IMMICHSLIDESHOW_PAUSE"
)

// Event is an inbound command or backend event. The set of kinds is closed.
type Event interface {
	event()
}

// BackendReady acknowledges that the backend built the image list for an instance.
type BackendReady struct {
	Identifier string `json:"identifier"`
}

// ConfigRegistered asks for the configuration to be sent to the backend again.
type ConfigRegistered struct{}

type Play struct{}

// ImageUpdate restarts the advance timer, sent by slide controllers.
type ImageUpdate struct{}

type Next struct{}

type Previous struct{}

type Pause struct{}

// DisplayImage carries an image ready for display.
type DisplayImage struct {
	Payload ImagePayload
}

// VideoState reports whether a video is playing. While it is, video playback owns pacing.
type VideoState struct {
	Playing bool
}

// Unknown is any notification outside of the protocol.
type Unknown struct {
	Name string
}

func (BackendReady) event()     {}
func (ConfigRegistered) event() {}
func (Play) event()             {}
func (ImageUpdate) event()      {}
func (Next) event()             {}
func (Previous) event()         {}
func (Pause) event()            {}
func (DisplayImage) event()     {}
func (VideoState) event()       {}
func (Unknown) event()          {}

// ParseNotification maps a named notification and its JSON payload to an Event. Names outside
// of the protocol map to Unknown.
func ParseNotification(name string, payload json.RawMessage) (Event, error) {
	switch name {
	case NotificationReady:
		var ready BackendReady
		if err := unmarshalPayload(payload, &ready); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
		}
		return ready, nil
	case NotificationRegisterConfig:
		return ConfigRegistered{}, nil
	case NotificationPlay:
		return Play{}, nil
	case NotificationDisplayImage:
		var image ImagePayload
		if err := unmarshalPayload(payload, &image); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
		}
		return DisplayImage{Payload: image}, nil
	case NotificationImageUpdate:
		return ImageUpdate{}, nil
	case NotificationNext:
		return Next{}, nil
	case NotificationPrevious:
		return Previous{}, nil
	case NotificationPause:
		return Pause{}, nil
	default:
		return Unknown{Name: name}, nil
	}
}

func unmarshalPayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}

// Backend is the outbound side of the backend collaborator channel. Calls are fire and forget.
type Backend interface {
	RegisterConfig(cfg config.Config)
	RequestNext()
	RequestPrevious()
	ImageShown(path string)
	Suspend()
	Resume()
}
