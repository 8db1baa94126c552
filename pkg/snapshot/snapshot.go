// Package snapshot archives the raw gazette pages that article records were
// extracted from, on the local filesystem or in S3.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for keys that are not in the archive.
var ErrNotFound = errors.New("snapshot not found")

// ErrInvalidKey is returned for keys that would escape the archive root.
var ErrInvalidKey = errors.New("invalid snapshot key")

// Archive stores page snapshots under generated keys.
type Archive interface {
	// Put stores html and returns its key.
	Put(ctx context.Context, lawID string, fetchedAt time.Time, html []byte) (string, error)

	// Get opens a stored snapshot. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a snapshot. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys stored for a law, oldest first.
	List(ctx context.Context, lawID string) ([]string, error)
}

// Type selects the archive backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds archive settings.
type Config struct {
	Type      Type   `yaml:"type"`
	LocalPath string `yaml:"local_path"`

	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Endpoint string `yaml:"s3_endpoint"` // S3-compatible servers such as MinIO

	AWSAccessKey string `yaml:"-"`
	AWSSecretKey string `yaml:"-"`
}

// New creates the archive selected by cfg.Type.
func New(ctx context.Context, cfg Config) (Archive, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalArchive(cfg.LocalPath)
	case TypeS3:
		return NewS3Archive(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown snapshot archive type: %s", cfg.Type)
	}
}

// timestampLayout sorts lexically in time order.
const timestampLayout = "20060102T150405Z"

// newKey builds <lawID>/<UTC timestamp>_<uuid>.html.
func newKey(lawID string, fetchedAt time.Time) (string, error) {
	if err := validateSegment(lawID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s_%s.html", lawID, fetchedAt.UTC().Format(timestampLayout), uuid.NewString()), nil
}

// ParseKey returns the law and fetch time encoded in a key.
func ParseKey(key string) (lawID string, fetchedAt time.Time, err error) {
	lawID, name, ok := strings.Cut(key, "/")
	if !ok || strings.Contains(name, "/") {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	stamp, _, ok := strings.Cut(name, "_")
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	fetchedAt, err = time.Parse(timestampLayout, stamp)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	return lawID, fetchedAt, nil
}

func validateKey(key string) error {
	if key == "" || path.IsAbs(key) || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if err := validateSegment(segment); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

func validateSegment(segment string) error {
	if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
		return fmt.Errorf("%w: segment %q", ErrInvalidKey, segment)
	}
	return nil
}
