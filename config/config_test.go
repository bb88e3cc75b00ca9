package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Mode != ModeMemory {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeMemory)
	}
	if cfg.Interval() != 10*time.Minute {
		t.Errorf("Interval() = %v, want 10m", cfg.Interval())
	}
	// transitions are off by default, so the transition speed collapses to zero
	if cfg.TransitionSpeed != "0" {
		t.Errorf("TransitionSpeed = %q, want 0", cfg.TransitionSpeed)
	}
	if cfg.BackgroundAnimationDuration != "600s" {
		t.Errorf("BackgroundAnimationDuration = %q, want 600s", cfg.BackgroundAnimationDuration)
	}
	if diff := cmp.Diff([]string{"date", "since"}, cfg.ImageInfo); diff != "" {
		t.Errorf("ImageInfo mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Transitions) != 11 {
		t.Errorf("len(Transitions) = %d, want 11", len(cfg.Transitions))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, c Config)
	}{
		{
			name: "invalid mode falls back to memory",
			cfg:  Config{Mode: "weekly", NumDaysToInclude: 3},
			check: func(t *testing.T, c Config) {
				if c.Mode != ModeMemory {
					t.Errorf("Mode = %q, want memory", c.Mode)
				}
			},
		},
		{
			name: "mode is case folded",
			cfg:  Config{Mode: " Album ", AlbumID: "abc"},
			check: func(t *testing.T, c Config) {
				if c.Mode != ModeAlbum {
					t.Errorf("Mode = %q, want album", c.Mode)
				}
			},
		},
		{
			name: "album id wins over album name",
			cfg:  Config{Mode: ModeAlbum, AlbumID: "abc", AlbumName: "Holidays"},
			check: func(t *testing.T, c Config) {
				if c.AlbumID != "abc" || c.AlbumName != "" {
					t.Errorf("AlbumID = %q, AlbumName = %q; want abc and empty", c.AlbumID, c.AlbumName)
				}
			},
		},
		{
			name: "invalid image info falls back to date",
			cfg:  Config{ShowImageInfo: true, ImageInfo: []string{"bogus"}},
			check: func(t *testing.T, c Config) {
				if diff := cmp.Diff([]string{"date"}, c.ImageInfo); diff != "" {
					t.Errorf("ImageInfo mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "mixed image info keeps configured order",
			cfg:  Config{ShowImageInfo: true, ImageInfo: []string{"Name bogus", "GEO,people"}},
			check: func(t *testing.T, c Config) {
				want := []string{"name", "bogus", "geo", "people"}
				if diff := cmp.Diff(want, c.ImageInfo); diff != "" {
					t.Errorf("ImageInfo mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "transition speed kept when transitions enabled",
			cfg:  Config{TransitionImages: true, TransitionSpeed: "2s"},
			check: func(t *testing.T, c Config) {
				if c.TransitionSpeed != "2s" {
					t.Errorf("TransitionSpeed = %q, want 2s", c.TransitionSpeed)
				}
			},
		},
		{
			name: "animation duration keeps fractional seconds",
			cfg:  Config{SlideshowSpeed: 2500, BackgroundAnimationDuration: "1s"},
			check: func(t *testing.T, c Config) {
				if c.BackgroundAnimationDuration != "2.5s" {
					t.Errorf("BackgroundAnimationDuration = %q, want 2.5s", c.BackgroundAnimationDuration)
				}
			},
		},
		{
			name: "sub second animation duration",
			cfg:  Config{SlideshowSpeed: 500, BackgroundAnimationDuration: "1s"},
			check: func(t *testing.T, c Config) {
				if c.BackgroundAnimationDuration != "0.5s" {
					t.Errorf("BackgroundAnimationDuration = %q, want 0.5s", c.BackgroundAnimationDuration)
				}
			},
		},
		{
			name: "explicit animation duration kept",
			cfg:  Config{SlideshowSpeed: 5000, BackgroundAnimationDuration: "30s"},
			check: func(t *testing.T, c Config) {
				if c.BackgroundAnimationDuration != "30s" {
					t.Errorf("BackgroundAnimationDuration = %q, want 30s", c.BackgroundAnimationDuration)
				}
			},
		},
		{
			name: "extensions and sort key lower cased",
			cfg:  Config{ValidImageFileExtensions: "JPG,PNG", SortImagesBy: "Created"},
			check: func(t *testing.T, c Config) {
				if c.ValidImageFileExtensions != "jpg,png" || c.SortImagesBy != "created" {
					t.Errorf("got %q and %q", c.ValidImageFileExtensions, c.SortImagesBy)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Normalize()
			tt.check(t, cfg)
		})
	}
}

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"immich ok", Config{APIKey: "k", ImmichURL: "http://immich"}, nil},
		{"immich missing key", Config{ImmichURL: "http://immich"}, ErrMissingAPIKey},
		{"immich missing url", Config{APIKey: "k"}, ErrMissingImmichURL},
		{"s3 ok", Config{Source: SourceS3, S3Bucket: "photos"}, nil},
		{"s3 missing bucket", Config{Source: SourceS3}, ErrMissingS3Bucket},
		{"local ok", Config{Source: SourceLocal, LocalPath: "/photos"}, nil},
		{"local missing path", Config{Source: SourceLocal}, ErrMissingLocalPath},
	}
	for _, tt := range tests {
		if got := tt.cfg.CheckCredentials(); got != tt.want {
			t.Errorf("%s: CheckCredentials() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
mode: album
albumId: abc
slideshowSpeed: 5000
showImageInfo: true
imageInfo:
  - name
  - date
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, map[string]any{"logLevel": "debug"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mode != ModeAlbum || cfg.AlbumID != "abc" {
		t.Errorf("Mode = %q, AlbumID = %q", cfg.Mode, cfg.AlbumID)
	}
	if cfg.Interval() != 5*time.Second {
		t.Errorf("Interval() = %v, want 5s", cfg.Interval())
	}
	if diff := cmp.Diff([]string{"name", "date"}, cfg.ImageInfo); diff != "" {
		t.Errorf("ImageInfo mismatch (-want +got):\n%s", diff)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.ImageInfoLocation != "bottomRight" {
		t.Errorf("ImageInfoLocation = %q, want default bottomRight", cfg.ImageInfoLocation)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
