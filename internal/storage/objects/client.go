// Package objects archives uploaded design images in S3-compatible storage.
package objects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned when storage is not configured.
var ErrDisabled = errors.New("object storage not configured")

const defaultRegion = "us-east-1"

type Config struct {
	Endpoint        string // e.g. "minio:9000"
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// Client stores designs under designs/<owner>/ in one bucket. A client built
// from a config without an Endpoint is disabled.
type Client struct {
	mc      *minio.Client
	bucket  string
	enabled bool
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{}, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket, enabled: true}, nil
}

func (c *Client) Enabled() bool { return c != nil && c.enabled }

// EnsureBucket creates the bucket if it does not exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// PutDesign uploads a design image and returns its URL.
func (c *Client) PutDesign(ctx context.Context, owner string, data []byte, contentType string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	key := DesignKey(owner, uuid.NewString(), contentType)
	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return c.objectURL(key), nil
}

func (c *Client) objectURL(key string) string {
	u := *c.mc.EndpointURL()
	u.Path = "/" + c.bucket + "/" + key
	return u.String()
}

// DesignKey is the object key of one uploaded design.
func DesignKey(owner, id, contentType string) string {
	return "designs/" + url.PathEscape(owner) + "/" + id + extension(contentType)
}

func extension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}
