package registry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danushadhitya/file-manager/internal/models"
	"github.com/danushadhitya/file-manager/internal/registry"
	"github.com/danushadhitya/file-manager/internal/registry/registrytest"
)

func newTestRegistry(opts registry.Options) (*registry.Registry, *registrytest.MemObjectStore, *registrytest.MemMetadataStore) {
	objects := registrytest.NewMemObjectStore()
	metadata := registrytest.NewMemMetadataStore()
	return registry.New(objects, metadata, opts, nil), objects, metadata
}

func upload(t *testing.T, reg *registry.Registry, name, content string) *models.File {
	t.Helper()
	rec, err := reg.Upload(context.Background(), name, strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	return rec
}

func TestUploadCreatesRecord(t *testing.T) {
	reg, objects, metadata := newTestRegistry(registry.Options{})

	rec := upload(t, reg, "report.pdf", strings.Repeat("x", 200))

	assert.Equal(t, uint(1), rec.ID)
	assert.Equal(t, "report.pdf", rec.Filename)
	assert.Equal(t, models.StatusUploaded, rec.Status)
	assert.Len(t, objects.Objects["report.pdf"], 200)
	assert.Equal(t, 1, metadata.InsertCalls)
}

func TestUploadSanitizesName(t *testing.T) {
	reg, objects, _ := newTestRegistry(registry.Options{})

	rec := upload(t, reg, "../../etc/passwd", "data")

	assert.Equal(t, "passwd", rec.Filename)
	assert.True(t, objects.Has("passwd"))
	assert.False(t, objects.Has("../../etc/passwd"))
}

func TestUploadRejectsEmptyFilename(t *testing.T) {
	for _, name := range []string{"", "###", "../..", "   "} {
		reg, objects, metadata := newTestRegistry(registry.Options{})

		_, err := reg.Upload(context.Background(), name, strings.NewReader("data"), 4)

		assert.ErrorIs(t, err, registry.ErrValidation, "input %q", name)
		assert.Zero(t, objects.PutCalls, "input %q must not reach the object store", name)
		assert.Zero(t, metadata.InsertCalls, "input %q must not reach the metadata store", name)
	}
}

func TestUploadRejectsEmptyContent(t *testing.T) {
	reg, objects, _ := newTestRegistry(registry.Options{})

	_, err := reg.Upload(context.Background(), "empty.txt", strings.NewReader(""), 0)

	assert.ErrorIs(t, err, registry.ErrValidation)
	assert.Zero(t, objects.PutCalls)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	reg, objects, metadata := newTestRegistry(registry.Options{MaxUploadSize: 10})

	_, err := reg.Upload(context.Background(), "big.bin", strings.NewReader(strings.Repeat("x", 11)), 11)

	assert.ErrorIs(t, err, registry.ErrSizeLimit)
	assert.Zero(t, objects.PutCalls)
	assert.Zero(t, metadata.InsertCalls)
}

func TestUploadStorageFailure(t *testing.T) {
	reg, objects, metadata := newTestRegistry(registry.Options{})
	objects.FailPut = errors.New("bucket unreachable")

	_, err := reg.Upload(context.Background(), "a.txt", strings.NewReader("data"), 4)

	assert.ErrorIs(t, err, registry.ErrStorageWrite)
	assert.Zero(t, metadata.InsertCalls, "no row may be created when the object write failed")
}

func TestUploadMetadataFailureLeavesOrphan(t *testing.T) {
	reg, objects, metadata := newTestRegistry(registry.Options{})
	metadata.FailInsert = errors.New("connection reset")

	_, err := reg.Upload(context.Background(), "a.txt", strings.NewReader("data"), 4)

	// The object write is not rolled back; the key stays behind as an
	// orphan and the error class tells operators which half failed.
	assert.ErrorIs(t, err, registry.ErrMetadataWrite)
	assert.NotErrorIs(t, err, registry.ErrStorageWrite)
	assert.True(t, objects.Has("a.txt"))
}

func TestListPagination(t *testing.T) {
	reg, _, _ := newTestRegistry(registry.Options{})
	for i := 0; i < 25; i++ {
		upload(t, reg, "file"+strings.Repeat("x", i)+".txt", "data")
	}

	tests := []struct {
		name           string
		page, pageSize int
		wantPage       int
		wantPageSize   int
		wantLen        int
		wantFirstID    uint
		wantPrev       bool
		wantNext       bool
	}{
		{"first page defaults", 1, 10, 1, 10, 10, 1, false, true},
		{"second page", 2, 10, 2, 10, 10, 11, true, true},
		{"last page short", 3, 10, 3, 10, 5, 21, true, false},
		{"page zero clamps to one", 0, 10, 1, 10, 10, 1, false, true},
		{"negative page clamps to one", -3, 10, 1, 10, 10, 1, false, true},
		{"oversized page size clamps to max", 1, 1000, 1, 20, 20, 1, false, true},
		{"zero page size takes default", 1, 0, 1, 10, 10, 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, info, err := reg.List(context.Background(), tt.page, tt.pageSize)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPage, info.Page)
			assert.Equal(t, tt.wantPageSize, info.PageSize)
			assert.Equal(t, int64(25), info.Total)
			assert.Len(t, rows, tt.wantLen)
			assert.Equal(t, tt.wantFirstID, rows[0].ID)
			assert.Equal(t, tt.wantPrev, info.HasPrev)
			assert.Equal(t, tt.wantNext, info.HasNext)
		})
	}
}

func TestListOrdersByCreationThenID(t *testing.T) {
	reg, _, metadata := newTestRegistry(registry.Options{})
	upload(t, reg, "a.txt", "data")
	upload(t, reg, "b.txt", "data")
	upload(t, reg, "c.txt", "data")

	// Force a timestamp tie between the last two rows; ids break it.
	metadata.Files[2].DateCreated = metadata.Files[1].DateCreated

	rows, _, err := reg.List(context.Background(), 1, 10)
	require.NoError(t, err)

	ids := []uint{rows[0].ID, rows[1].ID, rows[2].ID}
	assert.Equal(t, []uint{1, 2, 3}, ids)
}

func TestListIncludesDeletedRecords(t *testing.T) {
	reg, _, _ := newTestRegistry(registry.Options{})
	rec := upload(t, reg, "a.txt", "data")

	_, err := reg.Delete(context.Background(), rec.ID)
	require.NoError(t, err)

	rows, info, err := reg.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Total)
	assert.Equal(t, models.StatusDeleted, rows[0].Status)
}

func TestDownloadReturnsPresignedURL(t *testing.T) {
	reg, _, _ := newTestRegistry(registry.Options{PresignTTL: 300 * time.Second})
	rec := upload(t, reg, "report.pdf", "data")

	url, expiresAt, err := reg.Download(context.Background(), rec.ID)
	require.NoError(t, err)

	assert.Contains(t, url, "report.pdf")
	assert.WithinDuration(t, time.Now().Add(300*time.Second), expiresAt, 5*time.Second)
}

func TestDownloadUnknownID(t *testing.T) {
	reg, _, _ := newTestRegistry(registry.Options{})

	_, _, err := reg.Download(context.Background(), 42)

	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestDownloadSkipsStatusCheck(t *testing.T) {
	reg, _, _ := newTestRegistry(registry.Options{})
	rec := upload(t, reg, "a.txt", "data")
	_, err := reg.Delete(context.Background(), rec.ID)
	require.NoError(t, err)

	// A DELETED record still yields a URL; it simply fails downstream.
	url, _, err := reg.Download(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Contains(t, url, "a.txt")
}

func TestDeleteRemovesObjectAndMarksRecord(t *testing.T) {
	reg, objects, metadata := newTestRegistry(registry.Options{})
	rec := upload(t, reg, "a.txt", "data")

	filename, err := reg.Delete(context.Background(), rec.ID)
	require.NoError(t, err)

	assert.Equal(t, "a.txt", filename)
	assert.False(t, objects.Has("a.txt"))
	assert.Equal(t, models.StatusDeleted, metadata.Files[0].Status)
}

func TestDeleteIsIdempotent(t *testing.T) {
	reg, _, metadata := newTestRegistry(registry.Options{})
	rec := upload(t, reg, "a.txt", "data")

	_, err := reg.Delete(context.Background(), rec.ID)
	require.NoError(t, err)
	_, err = reg.Delete(context.Background(), rec.ID)
	require.NoError(t, err, "deleting an already-deleted record must succeed")

	assert.Equal(t, models.StatusDeleted, metadata.Files[0].Status)
}

func TestDeleteUnknownID(t *testing.T) {
	reg, objects, _ := newTestRegistry(registry.Options{})

	_, err := reg.Delete(context.Background(), 42)

	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Zero(t, objects.DeleteCalls)
}

func TestDeleteStorageFailureKeepsStatus(t *testing.T) {
	reg, objects, metadata := newTestRegistry(registry.Options{})
	rec := upload(t, reg, "a.txt", "data")
	objects.FailDelete = errors.New("backend unreachable")

	_, err := reg.Delete(context.Background(), rec.ID)

	// Status only changes after a successful object delete.
	assert.ErrorIs(t, err, registry.ErrStorageDelete)
	assert.Equal(t, models.StatusUploaded, metadata.Files[0].Status)
	assert.Zero(t, metadata.UpdateCalls)
}

func TestUploadListDeleteDownloadScenario(t *testing.T) {
	reg, _, _ := newTestRegistry(registry.Options{})
	ctx := context.Background()

	rec, err := reg.Upload(ctx, "report.pdf", strings.NewReader(strings.Repeat("x", 200)), 200)
	require.NoError(t, err)
	assert.Equal(t, uint(1), rec.ID)
	assert.Equal(t, models.StatusUploaded, rec.Status)

	rows, _, err := reg.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(1), rows[0].ID)

	_, err = reg.Delete(ctx, 1)
	require.NoError(t, err)

	url, _, err := reg.Download(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	rows, _, err = reg.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, rows[0].Status)
}
