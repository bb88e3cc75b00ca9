package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/immichslideshow/config"
	"github.com/aouyang1/immichslideshow/slideshow"
)

const (
	searchPageSize = 1000
	assetTypeImage = "IMAGE"
)

// ImmichSource reads albums and recent photos from the Immich REST API.
type ImmichSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

func NewImmichSource(immichURL, apiKey string) *ImmichSource {
	base := strings.TrimRight(immichURL, "/")
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}
	return &ImmichSource{
		baseURL: base,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 2 * time.Minute},
		now:     time.Now,
	}
}

type immichAlbum struct {
	ID        string        `json:"id"`
	AlbumName string        `json:"albumName"`
	Assets    []immichAsset `json:"assets"`
}

type immichAsset struct {
	ID               string      `json:"id"`
	Type             string      `json:"type"`
	OriginalPath     string      `json:"originalPath"`
	OriginalFileName string      `json:"originalFileName"`
	FileCreatedAt    time.Time   `json:"fileCreatedAt"`
	FileModifiedAt   time.Time   `json:"fileModifiedAt"`
	ExifInfo         *immichExif `json:"exifInfo"`
	People           []struct {
		Name string `json:"name"`
	} `json:"people"`
}

type immichExif struct {
	DateTimeOriginal string      `json:"dateTimeOriginal"`
	Orientation      orientation `json:"orientation"`
	City             string      `json:"city"`
	State            string      `json:"state"`
	Country          string      `json:"country"`
}

// orientation is sent as a string by Immich, older servers send a number.
type orientation int

func (o *orientation) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*o = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// unknown orientations are displayed as is
		*o = 0
		return nil
	}
	*o = orientation(v)
	return nil
}

type searchMetadataRequest struct {
	TakenAfter time.Time `json:"takenAfter"`
	Type       string    `json:"type"`
	WithExif   bool      `json:"withExif"`
	WithPeople bool      `json:"withPeople"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
}

type searchMetadataResponse struct {
	Assets struct {
		Items    []immichAsset `json:"items"`
		NextPage *string       `json:"nextPage"`
	} `json:"assets"`
}

func (a immichAsset) toAsset() Asset {
	p := a.OriginalPath
	if p == "" {
		p = a.OriginalFileName
	}
	asset := Asset{
		ID:         a.ID,
		Path:       p,
		CreatedAt:  a.FileCreatedAt,
		ModifiedAt: a.FileModifiedAt,
	}
	if a.ExifInfo != nil {
		asset.ExifInfo = &slideshow.ExifInfo{
			DateTimeOriginal: a.ExifInfo.DateTimeOriginal,
			Orientation:      int(a.ExifInfo.Orientation),
			City:             a.ExifInfo.City,
			State:            a.ExifInfo.State,
			Country:          a.ExifInfo.Country,
		}
	}
	for _, person := range a.People {
		asset.People = append(asset.People, slideshow.Person{Name: person.Name})
	}
	return asset
}

// ListAssets returns the images of the configured album, or the images taken within the memory
// window.
func (s *ImmichSource) ListAssets(ctx context.Context, cfg config.Config) ([]Asset, error) {
	switch cfg.Mode {
	case config.ModeAlbum:
		return s.albumAssets(ctx, cfg.AlbumID, cfg.AlbumName)
	default:
		if cfg.NumDaysToInclude <= 0 {
			return nil, ErrNoDays
		}
		return s.memoryAssets(ctx, takenAfter(s.now(), cfg.NumDaysToInclude))
	}
}

func (s *ImmichSource) albumAssets(ctx context.Context, albumID, albumName string) ([]Asset, error) {
	if albumID == "" {
		if albumName == "" {
			return nil, ErrNoAlbum
		}
		id, err := s.findAlbum(ctx, albumName)
		if err != nil {
			return nil, err
		}
		albumID = id
	}

	var album immichAlbum
	if err := s.doJSON(ctx, http.MethodGet, "/albums/"+url.PathEscape(albumID), nil, &album); err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", albumID, err)
	}

	assets := make([]Asset, 0, len(album.Assets))
	for _, a := range album.Assets {
		if a.Type != "" && a.Type != assetTypeImage {
			continue
		}
		assets = append(assets, a.toAsset())
	}
	slog.Debug("listed album assets", "album", album.AlbumName, "id", albumID, "count", len(assets))
	return assets, nil
}

func (s *ImmichSource) findAlbum(ctx context.Context, name string) (string, error) {
	var albums []immichAlbum
	if err := s.doJSON(ctx, http.MethodGet, "/albums", nil, &albums); err != nil {
		return "", fmt.Errorf("failed to list albums: %w", err)
	}
	for _, album := range albums {
		if album.AlbumName == name {
			return album.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrAlbumNotFound, name)
}

func (s *ImmichSource) memoryAssets(ctx context.Context, after time.Time) ([]Asset, error) {
	var assets []Asset
	page := 1
	for {
		req := searchMetadataRequest{
			TakenAfter: after,
			Type:       assetTypeImage,
			WithExif:   true,
			WithPeople: true,
			Page:       page,
			Size:       searchPageSize,
		}
		var resp searchMetadataResponse
		if err := s.doJSON(ctx, http.MethodPost, "/search/metadata", req, &resp); err != nil {
			return nil, fmt.Errorf("failed to search assets taken after %s: %w", after.Format(time.DateOnly), err)
		}
		for _, a := range resp.Assets.Items {
			assets = append(assets, a.toAsset())
		}

		if resp.Assets.NextPage == nil || *resp.Assets.NextPage == "" {
			break
		}
		next, err := strconv.Atoi(*resp.Assets.NextPage)
		if err != nil || next <= page {
			break
		}
		page = next
	}
	return assets, nil
}

// FetchAsset downloads the preview rendition of the asset.
func (s *ImmichSource) FetchAsset(ctx context.Context, asset Asset) ([]byte, error) {
	path := "/assets/" + url.PathEscape(asset.ID) + "/thumbnail?size=preview"
	body, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset %s: %w", asset.ID, err)
	}
	return body, nil
}

func (s *ImmichSource) doJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := s.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (s *ImmichSource) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
