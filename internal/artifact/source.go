package artifact

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/template"
)

// ObjectStore is the part of the S3 API used for tables. *s3.Client
// satisfies it.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the client built by NewS3Client.
type S3Config struct {
	Region string
	// Endpoint overrides the S3 endpoint, ie a MinIO or LocalStack URL.
	// Path-style addressing is used when it is set.
	Endpoint string
}

// NewS3Client creates an S3 client using static credentials from the
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables.
func NewS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "environment",
				}, nil
			})),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// IsRemote reports whether source names an S3 object.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// Fetch reads the raw bytes of source, a local path or s3://bucket/key.
// store may be nil for local paths.
func Fetch(ctx context.Context, source string, store ObjectStore) ([]byte, error) {
	if !IsRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, errors.New("E133").WithDetailf("reading %s", source).Wrap(err)
		}
		return data, nil
	}

	bucket, key, ok := ParseS3URI(source)
	if !ok {
		return nil, errors.New("E133").
			WithDetailf("malformed S3 URI %q", source).
			WithSuggestion("Use s3://bucket/path/to/templates.cbor.zst")
	}
	if store == nil {
		return nil, errors.New("E133").WithDetailf("no S3 client configured for %s", source)
	}

	out, err := store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E133").WithDetailf("fetching %s", source).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E133").WithDetailf("reading %s", source).Wrap(err)
	}
	return data, nil
}

// Load fetches and decodes the table at source. The format is inferred
// from the path or object key.
func Load(ctx context.Context, source string, store ObjectStore) (*template.Table, Info, error) {
	f, err := DetectFormat(source)
	if err != nil {
		return nil, Info{}, err
	}
	return LoadAs(ctx, source, f, store)
}

// LoadAs is Load with an explicit format, for sources whose name does not
// carry one.
func LoadAs(ctx context.Context, source string, f Format, store ObjectStore) (*template.Table, Info, error) {
	data, err := Fetch(ctx, source, store)
	if err != nil {
		return nil, Info{}, err
	}
	return decodeInfo(source, data, f)
}

// Store encodes t and writes it to dest, a local path or s3://bucket/key.
func Store(ctx context.Context, dest string, t *template.Table, store ObjectStore) (Info, error) {
	if !IsRemote(dest) {
		return WriteFile(dest, t)
	}

	f, err := DetectFormat(dest)
	if err != nil {
		return Info{}, err
	}
	bucket, key, ok := ParseS3URI(dest)
	if !ok {
		return Info{}, errors.New("E132").WithDetailf("malformed S3 URI %q", dest)
	}
	if store == nil {
		return Info{}, errors.New("E132").WithDetailf("no S3 client configured for %s", dest)
	}

	data, digest, err := encodeDigest(t, f)
	if err != nil {
		return Info{}, err
	}
	_, err = store.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
		Metadata: map[string]string{
			"splice-digest": digest,
			"splice-format": f.String(),
		},
	})
	if err != nil {
		return Info{}, errors.New("E132").WithDetailf("uploading %s", dest).Wrap(err)
	}
	return Info{
		Source:    dest,
		Format:    f,
		Digest:    digest,
		Size:      len(data),
		Templates: len(t.Templates),
	}, nil
}
