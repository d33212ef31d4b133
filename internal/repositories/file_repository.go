package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/danushadhitya/file-manager/internal/models"
	"github.com/danushadhitya/file-manager/internal/registry"
)

// FileRepository is the gorm-backed metadata store. It implements
// registry.MetadataStore plus the filename listing the sweeper needs.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Insert(ctx context.Context, rec *models.File) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert file row: %w", err)
	}
	return nil
}

func (r *FileRepository) Get(ctx context.Context, id uint) (*models.File, error) {
	var rec models.File
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, registry.ErrNotFound
		}
		return nil, fmt.Errorf("query file %d: %w", id, err)
	}
	return &rec, nil
}

func (r *FileRepository) List(ctx context.Context, offset, limit int) ([]models.File, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.File{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	var rows []models.File
	err := r.db.WithContext(ctx).
		Order("date_created ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	return rows, total, nil
}

func (r *FileRepository) UpdateStatus(ctx context.Context, id uint, status models.FileStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update status of file %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return registry.ErrNotFound
	}
	return nil
}

// ListFilenamesByStatus returns the distinct filenames of rows in the given
// status. Used by the sweeper to compare metadata against bucket contents.
func (r *FileRepository) ListFilenamesByStatus(ctx context.Context, status models.FileStatus) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("status = ?", status).
		Distinct().
		Pluck("filename", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list %s filenames: %w", status, err)
	}
	return names, nil
}
