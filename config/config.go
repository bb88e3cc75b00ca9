// Package config loads and normalizes the slideshow configuration
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/viper"

	"github.com/aouyang1/immichslideshow/util"
)

type Mode string

const (
	ModeMemory Mode = "memory"
	ModeAlbum  Mode = "album"
)

const (
	SourceImmich = "immich"
	SourceS3     = "s3"
	SourceLocal  = "local"
)

// InfoFields are the recognized image info overlay fields.
var InfoFields = mapset.NewSet("name", "date", "since", "geo", "people")

const EnvPrefix = "IMMICH_SLIDESHOW"

// Config is created once at startup and handed to the backend on registration. It must not be
// mutated after Normalize.
type Config struct {
	Identifier string `mapstructure:"identifier" json:"identifier"`

	Source     string `mapstructure:"source" json:"source"`
	APIKey     string `mapstructure:"apiKey" json:"-"`
	ImmichURL  string `mapstructure:"immichUrl" json:"immichUrl"`
	S3Bucket   string `mapstructure:"s3Bucket" json:"s3Bucket"`
	AWSProfile string `mapstructure:"awsProfile" json:"awsProfile"`
	LocalPath  string `mapstructure:"localPath" json:"localPath"`

	Mode             Mode   `mapstructure:"mode" json:"mode"`
	NumDaysToInclude int    `mapstructure:"numDaysToInclude" json:"numDaysToInclude"`
	AlbumID          string `mapstructure:"albumId" json:"albumId,omitempty"`
	AlbumName        string `mapstructure:"albumName" json:"albumName,omitempty"`

	// SlideshowSpeed is the advance interval in milliseconds.
	SlideshowSpeed           int    `mapstructure:"slideshowSpeed" json:"slideshowSpeed"`
	SortImagesBy             string `mapstructure:"sortImagesBy" json:"sortImagesBy"`
	SortImagesDescending     bool   `mapstructure:"sortImagesDescending" json:"sortImagesDescending"`
	ValidImageFileExtensions string `mapstructure:"validImageFileExtensions" json:"validImageFileExtensions"`

	ShowImageInfo      bool     `mapstructure:"showImageInfo" json:"showImageInfo"`
	ImageInfo          []string `mapstructure:"imageInfo" json:"imageInfo"`
	ImageInfoLocation  string   `mapstructure:"imageInfoLocation" json:"imageInfoLocation"`
	ImageInfoNoFileExt bool     `mapstructure:"imageInfoNoFileExt" json:"imageInfoNoFileExt"`
	ShowProgressBar    bool     `mapstructure:"showProgressBar" json:"showProgressBar"`

	BackgroundSize               string   `mapstructure:"backgroundSize" json:"backgroundSize"`
	BackgroundPosition           string   `mapstructure:"backgroundPosition" json:"backgroundPosition"`
	BackgroundAnimationEnabled   bool     `mapstructure:"backgroundAnimationEnabled" json:"backgroundAnimationEnabled"`
	BackgroundAnimationDuration  string   `mapstructure:"backgroundAnimationDuration" json:"backgroundAnimationDuration"`
	BackgroundAnimationLoopCount string   `mapstructure:"backgroundAnimationLoopCount" json:"backgroundAnimationLoopCount"`
	Animations                   []string `mapstructure:"animations" json:"animations"`

	TransitionImages         bool     `mapstructure:"transitionImages" json:"transitionImages"`
	TransitionSpeed          string   `mapstructure:"transitionSpeed" json:"transitionSpeed"`
	Transitions              []string `mapstructure:"transitions" json:"transitions"`
	TransitionTimingFunction string   `mapstructure:"transitionTimingFunction" json:"transitionTimingFunction"`

	ChangeImageOnResume bool `mapstructure:"changeImageOnResume" json:"changeImageOnResume"`

	// host settings
	ServerAddr            string `mapstructure:"serverAddr" json:"-"`
	DatabasePath          string `mapstructure:"databasePath" json:"-"`
	LogLevel              string `mapstructure:"logLevel" json:"-"`
	ViewportWidth         int    `mapstructure:"viewportWidth" json:"-"`
	ViewportHeight        int    `mapstructure:"viewportHeight" json:"-"`
	ProbeDisplay          bool   `mapstructure:"probeDisplay" json:"-"`
	NativeExifOrientation bool   `mapstructure:"nativeExifOrientation" json:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"identifier":                   "immichslideshow",
		"source":                       SourceImmich,
		"apiKey":                       "",
		"immichUrl":                    "",
		"s3Bucket":                     "",
		"awsProfile":                   "",
		"localPath":                    "",
		"mode":                         string(ModeMemory),
		"numDaysToInclude":             7,
		"albumId":                      "",
		"albumName":                    "",
		"slideshowSpeed":               10 * 60 * 1000,
		"sortImagesBy":                 "none",
		"sortImagesDescending":         false,
		"validImageFileExtensions":     util.DefaultImageExtensions,
		"showImageInfo":                false,
		"imageInfo":                    []string{"date", "since"},
		"imageInfoLocation":            "bottomRight",
		"imageInfoNoFileExt":           false,
		"showProgressBar":              false,
		"backgroundSize":               "cover",
		"backgroundPosition":           "center",
		"backgroundAnimationEnabled":   false,
		"backgroundAnimationDuration":  "1s",
		"backgroundAnimationLoopCount": "infinite",
		"animations":                   []string{"slide", "zoomOut", "zoomIn"},
		"transitionImages":             false,
		"transitionSpeed":              "2s",
		"transitions": []string{
			"opacity",
			"slideFromRight",
			"slideFromLeft",
			"slideFromTop",
			"slideFromBottom",
			"slideFromTopLeft",
			"slideFromTopRight",
			"slideFromBottomLeft",
			"slideFromBottomRight",
			"flipX",
			"flipY",
		},
		"transitionTimingFunction": "cubic-bezier(.17,.67,.35,.96)",
		"changeImageOnResume":      false,
		"serverAddr":               "0.0.0.0:8080",
		"databasePath":             "slideshow.db",
		"logLevel":                 "info",
		"viewportWidth":            1920,
		"viewportHeight":           1080,
		"probeDisplay":             false,
		"nativeExifOrientation":    true,
	}
}

// Default returns the normalized default configuration.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// defaults are static, a failure here is a programming error
		panic(fmt.Sprintf("decode default config: %v", err))
	}
	cfg.Normalize()
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path (yaml or json, optional) merged over the defaults and the
// IMMICH_SLIDESHOW_* environment, and normalizes the result.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize applies the runtime relevant validation and defaulting. Problems are logged as
// warnings and never fail.
func (c *Config) Normalize() {
	c.ValidImageFileExtensions = strings.ToLower(c.ValidImageFileExtensions)
	c.SortImagesBy = strings.ToLower(strings.TrimSpace(c.SortImagesBy))
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))

	switch Mode(strings.ToLower(strings.TrimSpace(string(c.Mode)))) {
	case ModeMemory:
		c.Mode = ModeMemory
		if c.NumDaysToInclude <= 0 {
			slog.Warn("memory mode set, but numDaysToInclude does not have a valid value", "numDaysToInclude", c.NumDaysToInclude)
		}
	case ModeAlbum:
		c.Mode = ModeAlbum
		switch {
		case c.AlbumID == "" && c.AlbumName == "":
			slog.Warn("album mode set, but albumId or albumName do not have a valid value")
		case c.AlbumID != "" && c.AlbumName != "":
			slog.Warn("album mode set with both albumId and albumName, using albumId", "albumId", c.AlbumID, "albumName", c.AlbumName)
			c.AlbumName = ""
		}
	default:
		slog.Warn("mode not set to valid value, assuming memory mode", "mode", c.Mode)
		c.Mode = ModeMemory
	}

	c.ImageInfo = normalizeInfoFields(c.ImageInfo)
	if c.ShowImageInfo && !anyRecognized(c.ImageInfo) {
		slog.Warn("showImageInfo is set, but imageInfo does not have a valid value, using date", "imageInfo", c.ImageInfo)
		c.ImageInfo = []string{"date"}
	}

	if !c.TransitionImages {
		c.TransitionSpeed = "0"
	}

	// the pan animation follows the slideshow speed unless overridden
	if c.BackgroundAnimationDuration == "1s" {
		c.BackgroundAnimationDuration = strconv.FormatFloat(float64(c.SlideshowSpeed)/1000, 'f', -1, 64) + "s"
	}
}

// normalizeInfoFields lower cases the entries and splits values separated by whitespace or
// commas, dropping empty ones.
func normalizeInfoFields(fields []string) []string {
	var out []string
	for _, field := range fields {
		parts := strings.FieldsFunc(strings.ToLower(field), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
		out = append(out, parts...)
	}
	return out
}

func anyRecognized(fields []string) bool {
	for _, field := range fields {
		if InfoFields.Contains(field) {
			return true
		}
	}
	return false
}

var (
	ErrMissingAPIKey    = errors.New("missing required parameter apiKey")
	ErrMissingImmichURL = errors.New("missing required parameter immichUrl")
	ErrMissingS3Bucket  = errors.New("missing required parameter s3Bucket")
	ErrMissingLocalPath = errors.New("missing required parameter localPath")
)

// CheckCredentials reports whether the selected source has the credentials and endpoint it
// needs. Without them no slideshow is started.
func (c *Config) CheckCredentials() error {
	switch c.Source {
	case SourceS3:
		if c.S3Bucket == "" {
			return ErrMissingS3Bucket
		}
	case SourceLocal:
		if c.LocalPath == "" {
			return ErrMissingLocalPath
		}
	default:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
		if c.ImmichURL == "" {
			return ErrMissingImmichURL
		}
	}
	return nil
}

// Interval is the slideshow advance interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.SlideshowSpeed) * time.Millisecond
}

// Extensions is the set of accepted image file extensions.
func (c *Config) Extensions() mapset.Set[string] {
	return util.ParseExtensions(c.ValidImageFileExtensions)
}

// PanEnabled reports whether background pan animations apply.
func (c *Config) PanEnabled() bool {
	return c.BackgroundAnimationEnabled && len(c.Animations) > 0
}

// TransitionEnabled reports whether image transitions apply.
func (c *Config) TransitionEnabled() bool {
	return c.TransitionImages && len(c.Transitions) > 0
}
