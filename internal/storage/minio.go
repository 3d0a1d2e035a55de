package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"energy-analysis/internal/config"
)

// MinioSource stages telemetry objects from a bucket into a local
// temporary directory and hands the pipeline their paths.
type MinioSource struct {
	client  *minio.Client
	bucket  string
	workDir string
}

// NewMinioSource connects to the object store configured in settings.
func NewMinioSource(settings config.ObjectStoreSettings) (*MinioSource, error) {
	if settings.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	workDir, err := os.MkdirTemp("", "energy-analysis-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &MinioSource{client: client, bucket: settings.Bucket, workDir: workDir}, nil
}

// Files downloads every *.json object in the bucket and returns the
// staged local paths in object-name order.
func (s *MinioSource) Files(ctx context.Context) ([]string, error) {
	var paths []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, object.Err)
		}
		if !strings.HasSuffix(object.Key, ".json") {
			continue
		}
		path, err := s.Stage(ctx, object.Key)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Stage downloads one object into the staging directory and returns its
// local path.
func (s *MinioSource) Stage(ctx context.Context, objectName string) (string, error) {
	local := filepath.Join(s.workDir, filepath.Base(objectName))
	if err := s.client.FGetObject(ctx, s.bucket, objectName, local, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("failed to download %s/%s: %w", s.bucket, objectName, err)
	}
	return local, nil
}

// Close removes the staging directory and everything staged into it.
func (s *MinioSource) Close() error {
	return os.RemoveAll(s.workDir)
}
