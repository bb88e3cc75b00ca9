package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/aouyang1/immichslideshow/config"
)

// LocalSource reads images from a directory. Albums are subdirectories and the memory window
// matches on the modification time.
type LocalSource struct {
	path string
	now  func() time.Time

	trackedFiles mapset.Set[string]
}

func NewLocalSource(path string) *LocalSource {
	return &LocalSource{
		path:         path,
		now:          time.Now,
		trackedFiles: mapset.NewSet[string](),
	}
}

type fileInfo struct {
	name    string
	modTime time.Time
	path    string
}

func (l *LocalSource) getCurrentFiles(dir string) (mapset.Set[string], []fileInfo, error) {
	dirs, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read directory, %s, %w", dir, err)
	}

	currentFiles := mapset.NewSet[string]()
	var fileInfos []fileInfo

	for _, entry := range dirs {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := entry.Name()
		currentFiles.Add(name)
		fileInfos = append(fileInfos, fileInfo{
			name:    name,
			modTime: info.ModTime(),
			path:    filepath.Join(dir, name),
		})
	}

	return currentFiles, fileInfos, nil
}

func (l *LocalSource) ListAssets(ctx context.Context, cfg config.Config) ([]Asset, error) {
	dir := l.path
	var after time.Time
	switch cfg.Mode {
	case config.ModeAlbum:
		album := cfg.AlbumID
		if album == "" {
			album = cfg.AlbumName
		}
		if album == "" {
			return nil, ErrNoAlbum
		}
		dir = filepath.Join(l.path, album)
	default:
		if cfg.NumDaysToInclude <= 0 {
			return nil, ErrNoDays
		}
		after = takenAfter(l.now(), cfg.NumDaysToInclude)
	}

	currentFiles, fileInfos, err := l.getCurrentFiles(dir)
	if err != nil {
		return nil, err
	}

	if added := currentFiles.Difference(l.trackedFiles).Cardinality(); added > 0 && l.trackedFiles.Cardinality() > 0 {
		slog.Info("found new local files", "path", dir, "count", added)
	}
	if removed := l.trackedFiles.Difference(currentFiles).Cardinality(); removed > 0 {
		slog.Info("local files removed", "path", dir, "count", removed)
	}
	l.trackedFiles = currentFiles

	assets := make([]Asset, 0, len(fileInfos))
	for _, f := range fileInfos {
		if !after.IsZero() && f.modTime.Before(after) {
			continue
		}
		assets = append(assets, Asset{
			ID:         f.path,
			Path:       f.path,
			CreatedAt:  f.modTime,
			ModifiedAt: f.modTime,
		})
	}

	if len(assets) == 0 {
		slog.Info("no local files found", "path", dir)
	}
	return assets, nil
}

func (l *LocalSource) FetchAsset(ctx context.Context, asset Asset) ([]byte, error) {
	data, err := os.ReadFile(asset.ID)
	if err != nil {
		return nil, fmt.Errorf("unable to read local file, %s, %w", asset.ID, err)
	}
	return data, nil
}
