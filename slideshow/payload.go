package slideshow

// ImagePayload is one image delivered by the backend for a single display cycle. It is consumed
// by the display pipeline and discarded.
type ImagePayload struct {
	Identifier string    `json:"identifier,omitempty"`
	Path       string    `json:"path"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Data       []byte    `json:"data"`
	ExifInfo   *ExifInfo `json:"exifInfo,omitempty"`
	People     []Person  `json:"people,omitempty"`
}

type ExifInfo struct {
	DateTimeOriginal string `json:"dateTimeOriginal,omitempty"`
	// Orientation is the EXIF orientation code 1-8, 0 when absent.
	Orientation int    `json:"orientation,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
}

type Person struct {
	Name string `json:"name"`
}

func (p ImagePayload) orientation() int {
	if p.ExifInfo == nil {
		return 0
	}
	return p.ExifInfo.Orientation
}
