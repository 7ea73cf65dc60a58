package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
)

// DefaultMaxSize caps a workbook read from any source (50MB).
const DefaultMaxSize int64 = 50 << 20

// ErrTooLarge is returned when a workbook exceeds Options.MaxSize.
var ErrTooLarge = errors.New("workbook too large")

// Options controls how a workbook location is fetched.
type Options struct {
	Timeout    time.Duration // bounds remote fetches; zero means no extra bound
	MaxSize    int64         // zero means DefaultMaxSize
	S3Region   string
	S3Endpoint string
	HTTPClient *http.Client
}

// OptionsFromConfig builds fetch options from generate settings.
func OptionsFromConfig(cfg config.GenerateConfig) Options {
	return Options{
		Timeout:    cfg.SourceTimeout,
		MaxSize:    cfg.MaxSourceSize,
		S3Region:   cfg.S3Region,
		S3Endpoint: cfg.S3Endpoint,
	}
}

// Load fetches a workbook from a path, http(s) URL or s3://bucket/key and
// reads it with the given layout. Source on the result is set to location.
func Load(ctx context.Context, location string, layout config.Layout, opts Options) (core.Workbook, error) {
	data, err := Fetch(ctx, location, opts)
	if err != nil {
		return core.Workbook{}, err
	}

	wb, err := Read(bytes.NewReader(data), layout)
	if err != nil {
		return core.Workbook{}, fmt.Errorf("%s: %w", displayName(location), err)
	}
	wb.Source = location
	return wb, nil
}

// Fetch returns the raw bytes of a workbook location.
func Fetch(ctx context.Context, location string, opts Options) ([]byte, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rc, err := open(ctx, location, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return readLimited(rc, opts.maxSize())
}

func (o Options) maxSize() int64 {
	if o.MaxSize > 0 {
		return o.MaxSize
	}
	return DefaultMaxSize
}

func open(ctx context.Context, location string, opts Options) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return openHTTP(ctx, location, opts)
	case strings.HasPrefix(location, "s3://"):
		return openS3(ctx, location, opts)
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("fetch workbook: %w", err)
		}
		return f, nil
	}
}

func openHTTP(ctx context.Context, location string, opts Options) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch workbook: %w", err)
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch workbook: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch workbook: %s returned %s", location, resp.Status)
	}
	if resp.ContentLength > opts.maxSize() {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, resp.ContentLength, opts.maxSize())
	}
	return resp.Body, nil
}

func openS3(ctx context.Context, location string, opts Options) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URL(location)
	if err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("fetch workbook: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch workbook: get s3://%s/%s: %w", bucket, key, err)
	}
	if size := aws.ToInt64(out.ContentLength); size > opts.maxSize() {
		out.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, opts.maxSize())
	}
	return out.Body, nil
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("fetch workbook: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("fetch workbook: invalid s3 location %q", location)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("fetch workbook: s3 location %q has no key", location)
	}
	return u.Host, key, nil
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("fetch workbook: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, max)
	}
	return data, nil
}

func displayName(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	return filepath.Base(location)
}
