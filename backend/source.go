// Package backend is the collaborator that builds the image list, fetches images and feeds them to
// the slideshow
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/slideshow"
)

var (
	ErrAlbumNotFound = errors.New("album not found")
	ErrNoDays        = errors.New("numDaysToInclude must be positive in memory mode")
	ErrNoAlbum       = errors.New("albumId or albumName required in album mode")
)

// Asset is one image known to a source. ExifInfo is nil when the source does not provide it, in
// which case it is read from the image data.
type Asset struct {
	ID         string
	Path       string
	CreatedAt  time.Time
	ModifiedAt time.Time
	ExifInfo   *slideshow.ExifInfo
	People     []slideshow.Person
}

// Source lists and fetches the images of a photo library.
type Source interface {
	ListAssets(ctx context.Context, cfg config.Config) ([]Asset, error)
	FetchAsset(ctx context.Context, asset Asset) ([]byte, error)
}

// NewSource creates the source named by the configuration.
func NewSource(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.Source {
	case config.SourceImmich:
		return NewImmichSource(cfg.ImmichURL, cfg.APIKey), nil
	case config.SourceS3:
		return NewS3Source(ctx, cfg.AWSProfile, cfg.S3Bucket)
	case config.SourceLocal:
		return NewLocalSource(cfg.LocalPath), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// takenAfter is the start of the memory window.
func takenAfter(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
