package backend

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/aouyang1/immichslideshow/slideshow"
)

const exifDateLayout = "2006:01:02 15:04:05"

// exifFromImage reads the capture date and orientation embedded in the image data, nil when the
// image carries no EXIF.
func exifFromImage(data []byte) *slideshow.ExifInfo {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return nil
	}

	info := slideshow.ExifInfo{}
	if t, err := x.DateTime(); err == nil {
		info.DateTimeOriginal = t.Format(exifDateLayout)
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil {
			info.Orientation = o
		}
	}
	if info == (slideshow.ExifInfo{}) {
		return nil
	}
	return &info
}
