// Package photos archives diagnosis and follow-up photos in an S3-compatible
// bucket. A nil *Archive is valid and archives nothing.
package photos

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Photo kinds, used as the second key segment.
const (
	KindDiagnosis = "diagnosis"
	KindFollowUp  = "followup"
)

var ErrEmptyImage = errors.New("image is empty")

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled is false when no endpoint is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Endpoint) != "" }

type Archive struct {
	client *minio.Client
	bucket string
	region string
	now    func() time.Time

	initOnce sync.Once
	initErr  error
}

// New returns nil, nil when cfg is not enabled.
func New(cfg Config) (*Archive, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("photo archive access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("photo archive bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init photo archive: %w", err)
	}
	return &Archive{client: client, bucket: bucket, region: region, now: time.Now}, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.initOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.initErr = err
			return
		}
		if exists {
			return
		}
		a.initErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
	})
	return a.initErr
}

// Put stores one base64 photo and returns its object key. On a nil archive
// it returns "" and no error.
func (a *Archive) Put(ctx context.Context, owner, kind, imageBase64 string) (string, error) {
	if a == nil {
		return "", nil
	}
	data, err := Decode(imageBase64)
	if err != nil {
		return "", err
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	key := ObjectKey(owner, kind, a.now(), uuid.NewString())
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// ObjectKey lays photos out as owner/kind/YYYY/MM/id.jpg.
func ObjectKey(owner, kind string, at time.Time, id string) string {
	owner = strings.Trim(strings.TrimSpace(owner), "/")
	if owner == "" {
		owner = "anonymous"
	}
	return path.Join(owner, kind, at.UTC().Format("2006/01"), id+".jpg")
}

// StripDataURL returns the base64 payload of a data: URL; other input is
// returned trimmed.
func StripDataURL(imageBase64 string) string {
	s := strings.TrimSpace(imageBase64)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	return s
}

// Decode accepts raw base64 or a data: URL.
func Decode(imageBase64 string) ([]byte, error) {
	s := StripDataURL(imageBase64)
	if s == "" {
		return nil, ErrEmptyImage
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}
