package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/applyflow/applyflow-api/internal/platform/logger"
	"github.com/google/uuid"
)

// GCSStore uploads and resolves resume objects in a Google Cloud Storage
// bucket. Objects are laid out as <folder>/<userID>/<random>.<ext> so a
// user's uploads never collide and old resumes stay retrievable until
// replaced.
type GCSStore struct {
	client *gcs.Client
	bucket string
	folder string
	logger *slog.Logger
}

// NewGCSStore creates a store backed by the given bucket. Credentials are
// taken from the environment, the default for GCS clients.
func NewGCSStore(ctx context.Context, bucket, folder string, log *slog.Logger) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("bucket cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		folder: folder,
		logger: log.With(slog.String("component", "gcs_store")),
	}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error { return s.client.Close() }

// UploadResume stores a resume for the given user and returns its gs://
// reference. The original filename only contributes its extension; the
// stored object name is random.
func (s *GCSStore) UploadResume(
	ctx context.Context,
	userID uuid.UUID,
	filename string,
	contentType string,
	r io.Reader,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	object := fmt.Sprintf("%s/%s/%s%s", s.folder, userID, uuid.New(), path.Ext(filename))

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		log.Error("resume upload failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	if err := w.Close(); err != nil {
		log.Error("resume upload failed on close",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	ref := FormatURI(s.bucket, object)
	log.Info("resume uploaded",
		slog.String("user_id", userID.String()))
	return ref, nil
}

// LocalDocument is a resolved storage object on the local filesystem.
// Release removes the file; failures are logged and swallowed since a
// leaked temp file is not worth failing an attempt over.
type LocalDocument struct {
	path   string
	logger *slog.Logger
}

// Path returns the local filesystem path of the resolved document.
func (d *LocalDocument) Path() string { return d.path }

// Release removes the local copy.
func (d *LocalDocument) Release(ctx context.Context) {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.FromContextOrDefault(ctx, d.logger).Warn("failed to remove resolved document",
			slog.String("error", err.Error()))
	}
}

// Resolve downloads the object behind a gs:// reference into a temporary
// file, preserving the object's extension so downstream consumers can
// infer the file type. Returns ErrObjectNotFound when the object is gone
// and ErrTransfer for any other download failure.
func (s *GCSStore) Resolve(ctx context.Context, ref string) (*LocalDocument, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	bucket, object, err := ParseURI(ref)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, object)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn("failed to close object reader", slog.String("error", err.Error()))
		}
	}()

	f, err := os.CreateTemp("", "resume-*"+path.Ext(object))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temp file: %v", ErrTransfer, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	log.Debug("document resolved to local file")
	return &LocalDocument{path: f.Name(), logger: s.logger}, nil
}
