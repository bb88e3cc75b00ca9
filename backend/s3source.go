package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aouyang1/immichslideshow/config"
)

type s3Client interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

// S3Source reads images from an S3 bucket. Albums are key prefixes and the memory window
// matches on the last modified time.
type S3Source struct {
	client   s3Client
	s3Bucket string
	now      func() time.Time
}

func NewS3Source(ctx context.Context, profile, bucket string) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	// Load the Shared AWS Configuration (~/.aws/config)
	ctxCfg, cancelCfg := context.WithTimeout(ctx, 3*time.Second)
	cfg, err := awsconfig.LoadDefaultConfig(ctxCfg, opts...)
	cancelCfg()
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3Source(s3.NewFromConfig(cfg), bucket), nil
}

func newS3Source(client s3Client, bucket string) *S3Source {
	return &S3Source{
		client:   client,
		s3Bucket: bucket,
		now:      time.Now,
	}
}

func albumPrefix(cfg config.Config) string {
	prefix := cfg.AlbumID
	if prefix == "" {
		prefix = cfg.AlbumName
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func (r *S3Source) ListAssets(ctx context.Context, cfg config.Config) ([]Asset, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(r.s3Bucket),
	}

	var after time.Time
	switch cfg.Mode {
	case config.ModeAlbum:
		prefix := albumPrefix(cfg)
		if prefix == "" {
			return nil, ErrNoAlbum
		}
		input.Prefix = aws.String(prefix)
	default:
		if cfg.NumDaysToInclude <= 0 {
			return nil, ErrNoDays
		}
		after = takenAfter(r.now(), cfg.NumDaysToInclude)
	}

	var assets []Asset
	paginator := s3.NewListObjectsV2Paginator(r.client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to list objects in s3 bucket %s: %w", r.s3Bucket, err)
		}
		for _, object := range output.Contents {
			name := aws.ToString(object.Key)
			if strings.HasSuffix(name, "/") {
				continue
			}
			modified := aws.ToTime(object.LastModified)
			if !after.IsZero() && modified.Before(after) {
				continue
			}
			assets = append(assets, Asset{
				ID:         name,
				Path:       name,
				CreatedAt:  modified,
				ModifiedAt: modified,
			})
		}
	}

	if len(assets) == 0 {
		slog.Info("no remote files found", "bucket", r.s3Bucket, "prefix", aws.ToString(input.Prefix))
	}
	return assets, nil
}

func (r *S3Source) FetchAsset(ctx context.Context, asset Asset) ([]byte, error) {
	downloader := manager.NewDownloader(r.client)

	buf := manager.NewWriteAtBuffer([]byte{})
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(r.s3Bucket),
		Key:    aws.String(asset.ID),
	}); err != nil {
		return nil, fmt.Errorf("unable to download object from s3, %s, %w", asset.ID, err)
	}
	return buf.Bytes(), nil
}
