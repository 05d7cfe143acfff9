package runcache

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// RemoteConfig holds the authentication and endpoint details for the
// object-store adapter.
type RemoteConfig struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Secure    bool
	Enabled   bool
}

const presignExpiry = 5 * time.Minute
const artifactPrefix = "artifacts/"

// Remote is the S3-compatible presigned-URL remote cache (L2). When
// Enabled is false every operation is a successful no-op.
type Remote struct {
	cfg    RemoteConfig
	client *minio.Client
	http   *retryablehttp.Client
}

// NewRemote constructs a Remote from cfg. When cfg.Enabled is false, no
// client is constructed and every operation no-ops.
func NewRemote(cfg RemoteConfig, logger hclog.Logger) (*Remote, error) {
	r := &Remote{cfg: cfg}
	if !cfg.Enabled {
		return r, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "constructing remote cache client")
	}
	r.client = client

	r.http = retryablehttp.NewClient()
	r.http.Logger = logger
	r.http.RetryWaitMin = 500 * time.Millisecond
	r.http.RetryWaitMax = 3 * time.Second
	r.http.RetryMax = 2
	return r, nil
}

func objectName(key string) string {
	return artifactPrefix + key
}

// Upload presigns a PUT with a short signed lifetime for key and sends
// body. A disabled remote is a successful no-op.
func (r *Remote) Upload(ctx context.Context, key string, body []byte) error {
	if !r.cfg.Enabled {
		return nil
	}
	presigned, err := r.client.PresignedPutObject(ctx, r.cfg.Bucket, objectName(key), presignExpiry)
	if err != nil {
		return errors.Wrap(err, "presigning upload")
	}
	req, err := retryablehttp.NewRequest(http.MethodPut, presigned.String(), body)
	if err != nil {
		return errors.Wrap(err, "building upload request")
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "uploading artifact")
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("remote cache upload failed with status %d", resp.StatusCode)
	}
	return nil
}

// Download presigns a GET for key. A 404 is reported as (nil, false, nil);
// any other non-2xx status is an error. A disabled remote always misses.
func (r *Remote) Download(ctx context.Context, key string) ([]byte, bool, error) {
	if !r.cfg.Enabled {
		return nil, false, nil
	}
	presigned, err := r.client.PresignedGetObject(ctx, r.cfg.Bucket, objectName(key), presignExpiry, url.Values{})
	if err != nil {
		return nil, false, errors.Wrap(err, "presigning download")
	}
	req, err := retryablehttp.NewRequest(http.MethodGet, presigned.String(), nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "building download request")
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, false, errors.Wrap(err, "downloading artifact")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode/100 != 2 {
		return nil, false, errors.Errorf("remote cache download failed with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errors.Wrap(err, "reading artifact body")
	}
	return body, true, nil
}

// Ping lists at most one object to confirm the endpoint is reachable and
// the credentials are valid. A disabled remote always succeeds.
func (r *Remote) Ping(ctx context.Context) error {
	if !r.cfg.Enabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objCh := r.client.ListObjects(ctx, r.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:  artifactPrefix,
		MaxKeys: 1,
	})
	for obj := range objCh {
		if obj.Err != nil {
			return errors.Wrap(obj.Err, "pinging remote cache")
		}
	}
	return nil
}
