package reports

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// Writer persists finished report documents.
type Writer interface {
	// Write stores data under objectName and returns its URI.
	Write(ctx context.Context, objectName string, data []byte) (string, error)
}

// GCSWriter writes reports to a Google Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
type GCSWriter struct {
	client *storage.Client
	bucket string
}

// NewGCSWriter creates a storage client for bucket.
func NewGCSWriter(ctx context.Context, bucket string) (*GCSWriter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewGCSWriter: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSWriter: create storage client: %w", err)
	}
	return &GCSWriter{client: client, bucket: bucket}, nil
}

// Write uploads data as a JSON object and returns its gs:// URI.
func (w *GCSWriter) Write(ctx context.Context, objectName string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	ow := w.client.Bucket(w.bucket).Object(objectName).NewWriter(ctx)
	ow.ContentType = "application/json"

	if _, err := ow.Write(data); err != nil {
		_ = ow.Close()
		return "", fmt.Errorf("GCSWriter.Write: copy to writer: %w", err)
	}
	// Close finalizes the upload.
	if err := ow.Close(); err != nil {
		return "", fmt.Errorf("GCSWriter.Write: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", w.bucket, objectName), nil
}

// Read downloads the object at a gs:// URI.
func (w *GCSWriter) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := w.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSWriter.Read: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("GCSWriter.Read: reading bytes: %w", err)
	}
	return data, nil
}

// Close releases the storage client.
func (w *GCSWriter) Close() error {
	return w.client.Close()
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object path.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// DirWriter writes reports below a local directory. Used by the CLI and
// by the API when no bucket is configured.
type DirWriter struct {
	root string
}

// NewDirWriter returns a writer rooted at dir.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{root: dir}
}

// Write stores data at root/objectName and returns a file:// URI.
func (w *DirWriter) Write(ctx context.Context, objectName string, data []byte) (string, error) {
	target := filepath.Join(w.root, filepath.FromSlash(path.Clean("/" + objectName)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("DirWriter.Write: mkdir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("DirWriter.Write: %w", err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return "file://" + filepath.ToSlash(abs), nil
}

var (
	_ Writer = (*GCSWriter)(nil)
	_ Writer = (*DirWriter)(nil)
)
