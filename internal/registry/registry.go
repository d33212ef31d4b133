// Package registry is the one place that knows the object store and the
// metadata store must be kept in step. Every operation talks to both backends
// through narrow interfaces so tests can substitute in-memory doubles.
//
// There is no transaction spanning the two stores. Upload writes the object
// first and inserts metadata second; if the insert fails the object stays
// behind as an orphan and the error is classified ErrMetadataWrite so the
// gap is visible to operators. Delete removes the object first and only then
// marks the row DELETED. The sweeper package reports drift between the two.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/danushadhitya/file-manager/internal/models"
)

// ObjectStore is durable key-addressed blob storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	// Delete must treat a missing key as success.
	Delete(ctx context.Context, key string) error
}

// MetadataStore holds File rows. Get and UpdateStatus return ErrNotFound
// (possibly wrapped) when the id has no row.
type MetadataStore interface {
	Insert(ctx context.Context, rec *models.File) error
	Get(ctx context.Context, id uint) (*models.File, error)
	// List returns one page ordered by date_created ascending, ties broken
	// by id ascending, plus the total row count.
	List(ctx context.Context, offset, limit int) ([]models.File, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.FileStatus) error
}

// PageInfo describes the page a List call returned.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

// Options tunes a Registry. Zero values fall back to the defaults below.
type Options struct {
	MaxUploadSize   int64
	PresignTTL      time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

const (
	defaultMaxUploadSize = 16 << 20
	defaultPresignTTL    = 300 * time.Second
	defaultPageSize      = 10
	defaultMaxPageSize   = 20
)

type Registry struct {
	objects  ObjectStore
	metadata MetadataStore
	opts     Options
	log      *zap.Logger
}

func New(objects ObjectStore, metadata MetadataStore, opts Options, log *zap.Logger) *Registry {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = defaultMaxUploadSize
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = defaultPresignTTL
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{objects: objects, metadata: metadata, opts: opts, log: log}
}

// MaxUploadSize reports the configured upload cap so the HTTP layer can
// reject oversized bodies before reading them.
func (r *Registry) MaxUploadSize() int64 { return r.opts.MaxUploadSize }

// Upload stores content under the sanitized name and records a metadata row
// with status UPLOADED. Uploads with the same sanitized name overwrite the
// same object key while producing distinct rows; the registry does not
// namespace keys.
func (r *Registry) Upload(ctx context.Context, rawName string, content io.Reader, size int64) (*models.File, error) {
	name := Sanitize(rawName)
	if name == "" {
		return nil, fmt.Errorf("%w: filename %q is empty after sanitization", ErrValidation, rawName)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}
	if size > r.opts.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrSizeLimit, size, r.opts.MaxUploadSize)
	}

	if err := r.objects.Put(ctx, name, content, size); err != nil {
		return nil, fmt.Errorf("%w: put %q: %v", ErrStorageWrite, name, err)
	}

	rec := &models.File{Filename: name, Status: models.StatusUploaded}
	if err := r.metadata.Insert(ctx, rec); err != nil {
		// The object write already succeeded; the key is now orphaned.
		r.log.Error("metadata insert failed after object write",
			zap.String("key", name), zap.Error(err))
		return nil, fmt.Errorf("%w: insert row for %q: %v", ErrMetadataWrite, name, err)
	}

	r.log.Info("file uploaded",
		zap.Uint("id", rec.ID), zap.String("filename", name), zap.Int64("size", size))
	return rec, nil
}

// List returns one page of records ordered oldest first. page below 1 is
// clamped to 1; pageSize out of range is clamped, never rejected. Deleted
// records are included.
func (r *Registry) List(ctx context.Context, page, pageSize int) ([]models.File, PageInfo, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = r.opts.DefaultPageSize
	case pageSize > r.opts.MaxPageSize:
		pageSize = r.opts.MaxPageSize
	}

	rows, total, err := r.metadata.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("list files: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	info := PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	return rows, info, nil
}

// Download returns a time-limited retrieval URL for the record's object and
// the instant it expires. The record's status is deliberately not checked: a
// DELETED record still yields a URL, which will fail when dereferenced.
func (r *Registry) Download(ctx context.Context, id uint) (string, time.Time, error) {
	rec, err := r.metadata.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return "", time.Time{}, fmt.Errorf("get file %d: %w", id, err)
	}

	url, err := r.objects.PresignGet(ctx, rec.Filename, r.opts.PresignTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %q: %w", rec.Filename, err)
	}
	return url, time.Now().Add(r.opts.PresignTTL), nil
}

// Delete removes the record's object and marks the row DELETED. The status
// update only happens after the object delete call succeeds; deleting a key
// that is already gone counts as success, so Delete is idempotent.
func (r *Registry) Delete(ctx context.Context, id uint) (string, error) {
	rec, err := r.metadata.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return "", fmt.Errorf("get file %d: %w", id, err)
	}

	if err := r.objects.Delete(ctx, rec.Filename); err != nil {
		return "", fmt.Errorf("%w: delete %q: %v", ErrStorageDelete, rec.Filename, err)
	}

	if err := r.metadata.UpdateStatus(ctx, rec.ID, models.StatusDeleted); err != nil {
		return "", fmt.Errorf("%w: mark %d deleted: %v", ErrMetadataWrite, rec.ID, err)
	}

	r.log.Info("file deleted", zap.Uint("id", rec.ID), zap.String("filename", rec.Filename))
	return rec.Filename, nil
}
