package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tidehq/tide/internal/config"
	"go.uber.org/zap"
)

const uploadExpiry = 15 * time.Minute

// Uploader hands out presigned upload URLs. The feed engine never touches the
// binary; messages only carry the opaque object key back.
type Uploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

type UploadTicket struct {
	URL       string    `json:"url"`
	ObjectKey string    `json:"object_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewUploader(cfg *config.Config, logger *zap.Logger) (*Uploader, error) {
	endpoint := cfg.MinioURL
	secure := false
	if strings.HasPrefix(endpoint, "https://") {
		secure = true
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioUser, cfg.MinioPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	u := &Uploader{client: client, bucket: cfg.MinioBucket, publicURL: cfg.MinioPublicURL, logger: logger}
	if err := u.ensureBucket(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Uploader) ensureBucket() error {
	ctx := context.Background()

	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		u.logger.Info("created upload bucket", zap.String("bucket", u.bucket))
	}
	return nil
}

// PresignPut returns a short-lived PUT URL for a fresh object key.
func (u *Uploader) PresignPut(ctx context.Context, filename string) (*UploadTicket, error) {
	objectKey := uuid.New().String()
	if ext := extension(filename); ext != "" {
		objectKey += ext
	}

	presigned, err := u.client.PresignedPutObject(ctx, u.bucket, objectKey, uploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &UploadTicket{
		URL:       presigned.String(),
		ObjectKey: objectKey,
		ExpiresAt: time.Now().Add(uploadExpiry),
	}, nil
}

// PublicURL resolves an object key to a fetchable URL, preferring the
// configured public base when the storage endpoint is not reachable directly.
func (u *Uploader) PublicURL(objectKey string) string {
	if u.publicURL != "" {
		return strings.TrimSuffix(u.publicURL, "/") + "/" + u.bucket + "/" + objectKey
	}
	base := url.URL{Scheme: "http", Host: u.client.EndpointURL().Host, Path: "/" + u.bucket + "/" + objectKey}
	return base.String()
}

func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	ext := filename[i:]
	if len(ext) > 8 {
		return ""
	}
	return strings.ToLower(ext)
}
