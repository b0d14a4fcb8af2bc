package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	DefaultRegion = "us-east-1"
	s3Scheme      = "s3"
)

// ObjectGetter is the part of the S3 client used to fetch an export.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type AWSSettings struct {
	Profile string
	Region  string
}

// Opener resolves an input location to a readable stream. The S3 client is
// created on first use so local files never touch AWS configuration.
type Opener struct {
	settings AWSSettings
	newS3    func(ctx context.Context) (ObjectGetter, error)

	once      sync.Once
	client    ObjectGetter
	clientErr error
}

func NewOpener(settings AWSSettings) *Opener {
	o := &Opener{settings: settings}
	o.newS3 = func(ctx context.Context) (ObjectGetter, error) {
		cfg, err := LoadConfig(ctx, o.settings)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(*cfg), nil
	}
	return o
}

// NewOpenerWithClient uses the given client for s3:// locations.
func NewOpenerWithClient(client ObjectGetter) *Opener {
	return &Opener{
		newS3: func(context.Context) (ObjectGetter, error) { return client, nil },
	}
}

// Open returns the content at uri, a local path or s3://bucket/key, along
// with a display name for it.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	bucket, key, isS3, err := ParseS3URI(uri)
	if err != nil {
		return nil, "", err
	}
	if !isS3 {
		f, err := os.Open(uri)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", uri, err)
		}
		return f, path.Base(uri), nil
	}

	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, "", err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get s3 object %s: %w", uri, err)
	}
	return out.Body, path.Base(key), nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.once.Do(func() {
		o.client, o.clientErr = o.newS3(ctx)
	})
	return o.client, o.clientErr
}

// ParseS3URI splits an s3://bucket/key location. isS3 is false for anything
// that is not an s3 URI.
func ParseS3URI(uri string) (bucket, key string, isS3 bool, err error) {
	if !strings.HasPrefix(uri, s3Scheme+"://") {
		return "", "", false, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", true, fmt.Errorf("parse %s: %w", uri, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", true, fmt.Errorf("s3 location %q must name a bucket and a key", uri)
	}
	return u.Host, key, true, nil
}

func LoadConfig(ctx context.Context, settings AWSSettings) (*awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}
	if settings.Region != "" {
		opts = append(opts, config.WithRegion(settings.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}
