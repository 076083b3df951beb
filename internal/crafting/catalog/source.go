package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// Source loads a raw catalog document.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// ItemLister is a store that can enumerate catalog items, such as the SQLite store.
type ItemLister interface {
	GetAllItems(ctx context.Context) ([]crafting.Item, error)
}

// FileSource reads a catalog document from the local filesystem.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}

// S3Source reads a catalog document from an S3 object.
type S3Source struct {
	bucket string
	key    string
	s3     *s3.Client
}

// NewS3Source creates an S3Source.
func NewS3Source(client *s3.Client, bucket, key string) *S3Source {
	return &S3Source{bucket: bucket, key: key, s3: client}
}

func (s *S3Source) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("getting catalog object from S3: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// ParseS3URI splits "s3://bucket/key" into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parsing S3 URI: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q", uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("S3 URI %q has no object key", uri)
	}
	return u.Host, key, nil
}

// OpenSource returns the Source and Format for a catalog location, which is
// either a file path or an s3:// URI.
func OpenSource(ctx context.Context, location string) (Source, Format, error) {
	if !strings.HasPrefix(location, "s3://") {
		return NewFileSource(location), FormatFromPath(location), nil
	}

	bucket, key, err := ParseS3URI(location)
	if err != nil {
		return nil, "", err
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3Source(s3.NewFromConfig(cfg), bucket, key), FormatFromPath(key), nil
}

// Load reads, parses, and validates a catalog from src.
func Load(ctx context.Context, src Source, format Format) (*Catalog, []Issue, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}
	items, err := Parse(data, format)
	if err != nil {
		return nil, nil, err
	}
	return New(items)
}

// LoadFromStore builds a catalog from every item in a store.
func LoadFromStore(ctx context.Context, store ItemLister) (*Catalog, []Issue, error) {
	items, err := store.GetAllItems(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog items: %w", err)
	}
	return New(items)
}
