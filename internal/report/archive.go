package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ArchiveConfig locates the bucket exports are copied to.
type ArchiveConfig struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Archiver copies exported reports to S3-compatible storage. A nil Archiver
// archives nothing.
type Archiver struct {
	bucket string
	client *s3.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewArchiver returns nil when no bucket is configured.
func NewArchiver(cfg ArchiveConfig, logger zerolog.Logger) *Archiver {
	if cfg.Bucket == "" {
		return nil
	}
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: cfg.Endpoint != "",
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &Archiver{
		bucket: cfg.Bucket,
		client: s3.New(opts),
		logger: logger.With().Str("component", "report-archiver").Logger(),
		now:    time.Now,
	}
}

// Key is the object key for an export.
func Key(period, date, ext string, at time.Time) string {
	if date == "" {
		date = "all"
	}
	return fmt.Sprintf("reports/%s/%s-%d.%s", period, date, at.Unix(), ext)
}

// Archive uploads data and returns its object key.
func (a *Archiver) Archive(ctx context.Context, period, date, ext, contentType string, data []byte) (string, error) {
	if a == nil || len(data) == 0 {
		return "", nil
	}
	key := Key(period, date, ext, a.now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("archive report %s: %w", key, err)
	}
	a.logger.Info().Str("bucket", a.bucket).Str("key", key).Int("bytes", len(data)).Msg("report archived")
	return key, nil
}
