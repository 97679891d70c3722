package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"

	"apivengers/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/studio-b12/gowebdav"
)

// ArchiveSuffix is the extension of every backup file.
const ArchiveSuffix = ".tar.gz"

// Target stores backup archives somewhere.
type Target interface {
	Name() string
	Upload(ctx context.Context, name string, data []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
	// List returns archive names, newest first.
	List(ctx context.Context) ([]string, error)
}

// ErrNotConfigured is returned when a target lacks required settings.
var ErrNotConfigured = errors.New("backup target not configured")

var archiveStamp = regexp.MustCompile(`\d{8}_\d{6}`)

// sortNewestFirst orders archive names by their embedded timestamp, newest
// first. Names without one sort last.
func sortNewestFirst(names []string) []string {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := archiveStamp.FindString(names[i]), archiveStamp.FindString(names[j])
		if a != b {
			return a > b
		}
		return names[i] > names[j]
	})
	return names
}

// WebDAVTarget keeps archives in a WebDAV directory.
type WebDAVTarget struct {
	client *gowebdav.Client
	dir    string
}

// NewWebDAVTarget connects to url. Archives are written to the root of the
// share.
func NewWebDAVTarget(url, user, password string) (*WebDAVTarget, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: WebDAV URL is empty", ErrNotConfigured)
	}
	return &WebDAVTarget{client: gowebdav.NewClient(url, user, password), dir: "/"}, nil
}

func (t *WebDAVTarget) Name() string { return "webdav" }

func (t *WebDAVTarget) Upload(_ context.Context, name string, data []byte) error {
	if err := t.client.Write(path.Join(t.dir, name), data, 0644); err != nil {
		return fmt.Errorf("webdav upload failed: %w", err)
	}
	return nil
}

func (t *WebDAVTarget) Download(_ context.Context, name string) ([]byte, error) {
	data, err := t.client.Read(path.Join(t.dir, name))
	if err != nil {
		return nil, fmt.Errorf("webdav download failed: %w", err)
	}
	return data, nil
}

func (t *WebDAVTarget) List(context.Context) ([]string, error) {
	infos, err := t.client.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("webdav list failed: %w", err)
	}
	names := []string{}
	for _, fi := range infos {
		if !fi.IsDir() && strings.HasSuffix(fi.Name(), ArchiveSuffix) {
			names = append(names, fi.Name())
		}
	}
	return sortNewestFirst(names), nil
}

// S3Config holds the settings of an S3 compatible bucket.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3Target keeps archives in an S3 compatible bucket.
type S3Target struct {
	client *s3.Client
	bucket string
}

// NewS3Target builds a client with static credentials and path-style
// addressing so MinIO and similar servers work.
func NewS3Target(ctx context.Context, c S3Config) (*S3Target, error) {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return nil, fmt.Errorf("%w: S3 configuration incomplete", ErrNotConfigured)
	}
	region := c.Region
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = true
	})
	return &S3Target{client: client, bucket: c.Bucket}, nil
}

func (t *S3Target) Name() string { return "s3" }

func (t *S3Target) Upload(ctx context.Context, name string, data []byte) error {
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(name),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

func (t *S3Target) Download(ctx context.Context, name string) ([]byte, error) {
	result, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download failed: %w", err)
	}
	defer result.Body.Close()
	return io.ReadAll(result.Body)
}

func (t *S3Target) List(ctx context.Context) ([]string, error) {
	names := []string{}
	p := s3.NewListObjectsV2Paginator(t.client, &s3.ListObjectsV2Input{Bucket: aws.String(t.bucket)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ArchiveSuffix) {
				names = append(names, key)
			}
		}
	}
	return sortNewestFirst(names), nil
}

// LocalTarget keeps archives in the backups dir of the data filesystem.
type LocalTarget struct {
	fs *storage.FileSystem
}

func NewLocalTarget(fs *storage.FileSystem) *LocalTarget {
	return &LocalTarget{fs: fs}
}

func (t *LocalTarget) Name() string { return "local" }

func (t *LocalTarget) Upload(_ context.Context, name string, data []byte) error {
	return t.fs.WriteFile(path.Join(storage.BackupsDir, path.Base(name)), data)
}

func (t *LocalTarget) Download(_ context.Context, name string) ([]byte, error) {
	return t.fs.ReadFile(path.Join(storage.BackupsDir, path.Base(name)))
}

func (t *LocalTarget) List(context.Context) ([]string, error) {
	infos, err := t.fs.List(storage.BackupsDir, ArchiveSuffix)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Name
	}
	return sortNewestFirst(names), nil
}
