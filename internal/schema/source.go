package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"
)

// maxDocumentSize bounds how much of a remote document is read.
const maxDocumentSize = 64 << 20

// S3API is the subset of the S3 client the loader needs.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// GCSOpener opens an object in Google Cloud Storage for reading.
type GCSOpener func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// Loader fetches configuration documents from local files, HTTP(S),
// S3 (s3://bucket/key) or Google Cloud Storage (gs://bucket/object).
type Loader struct {
	HTTPClient *http.Client

	// S3 overrides the client built from the default AWS config chain.
	S3        S3API
	AWSRegion string

	// GCS overrides the opener backed by a storage.Client.
	GCS                GCSOpener
	GCSCredentialsFile string
}

// Load fetches and parses the document at uri using a zero Loader.
func Load(ctx context.Context, uri string) (*Schema, error) {
	return (&Loader{}).Load(ctx, uri)
}

// Load fetches and parses the document at uri.
func (l *Loader) Load(ctx context.Context, uri string) (*Schema, error) {
	data, err := l.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, FormatFromPath(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return s, nil
}

// Fetch returns the raw document bytes at uri.
func (l *Loader) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedSource)
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return readFile(uri)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return l.fetchHTTP(ctx, uri)
	case "s3":
		return l.fetchS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "gs":
		return l.fetchGCS(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, u.Scheme)
	}
}

func readFile(p string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return data, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("build schema request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schema: %s returned status %d", uri, resp.StatusCode)
	}
	return readLimited(resp.Body)
}

func (l *Loader) fetchS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3 location needs bucket and key", ErrUnsupportedSource)
	}

	client := l.S3
	if client == nil {
		var opts []func(*awsconfig.LoadOptions) error
		if l.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(l.AWSRegion))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client = s3.NewFromConfig(cfg)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	return readLimited(out.Body)
}

func (l *Loader) fetchGCS(ctx context.Context, bucket, object string) ([]byte, error) {
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("%w: gs location needs bucket and object", ErrUnsupportedSource)
	}

	open := l.GCS
	if open == nil {
		open = l.storageOpener
	}
	rc, err := open(ctx, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	defer rc.Close()
	return readLimited(rc)
}

func (l *Loader) storageOpener(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	var opts []option.ClientOption
	if l.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(l.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &gcsReader{Reader: r, client: client}, nil
}

// gcsReader closes the storage client together with the object reader.
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (g *gcsReader) Close() error {
	err := g.Reader.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read schema document: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("schema document exceeds %d bytes", maxDocumentSize)
	}
	return data, nil
}
