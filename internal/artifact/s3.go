package artifact

import (
	"bytes"
	"context"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// S3Config selects an S3-compatible target for published artifacts.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether publishing is configured at all.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != ""
}

// S3Publisher uploads rendered documents under <prefix>/<runID>/.
type S3Publisher struct {
	client   *minio.Client
	bucket   string
	region   string
	prefix   string
	initOnce sync.Once
	initErr  error
}

func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init s3 client")
	}

	return &S3Publisher{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads every document. The first failed upload aborts the
// batch; already uploaded objects are left in place.
func (p *S3Publisher) Publish(ctx context.Context, runID string, docs []Document) error {
	if p == nil || p.client == nil {
		return errors.New("publisher is not configured")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("run id is required")
	}
	if err := p.ensureBucket(ctx); err != nil {
		return errors.Wrap(err, "ensure bucket")
	}

	for _, d := range docs {
		key := p.objectKey(runID, d.Name)
		_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(d.Content), int64(len(d.Content)), minio.PutObjectOptions{
			ContentType: contentType(d.Name),
		})
		if err != nil {
			return errors.Wrapf(err, "upload %s", key)
		}
	}
	return nil
}

func (p *S3Publisher) objectKey(runID, name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if p.prefix != "" {
		return p.prefix + "/" + runID + "/" + name
	}
	return runID + "/" + name
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".md":
		return "text/markdown"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	default:
		return "text/plain"
	}
}
