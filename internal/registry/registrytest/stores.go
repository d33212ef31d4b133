// Package registrytest provides in-memory doubles for the registry's two
// backends. Both count their calls so tests can assert that a rejected
// request never reached a backend, and both support failure injection.
package registrytest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/danushadhitya/file-manager/internal/models"
	"github.com/danushadhitya/file-manager/internal/registry"
)

// MemObjectStore keeps objects in a map.
type MemObjectStore struct {
	mu      sync.Mutex
	Objects map[string][]byte

	PutCalls     int
	PresignCalls int
	DeleteCalls  int

	FailPut     error
	FailPresign error
	FailDelete  error
}

func NewMemObjectStore() *MemObjectStore {
	return &MemObjectStore{Objects: make(map[string][]byte)}
}

func (s *MemObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PutCalls++
	if s.FailPut != nil {
		return s.FailPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.Objects[key] = data
	return nil
}

// PresignGet returns a URL whether or not the key exists, mirroring real
// presigners, which sign without checking the object.
func (s *MemObjectStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PresignCalls++
	if s.FailPresign != nil {
		return "", s.FailPresign
	}
	return fmt.Sprintf("https://objects.test/%s?expires=%d", key, int64(expires.Seconds())), nil
}

// Delete succeeds for missing keys.
func (s *MemObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if s.FailDelete != nil {
		return s.FailDelete
	}
	delete(s.Objects, key)
	return nil
}

func (s *MemObjectStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Objects))
	for key := range s.Objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Has reports whether a key is present.
func (s *MemObjectStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}

// MemMetadataStore keeps rows in a slice. Ids are assigned sequentially from
// 1 and creation timestamps advance one second per insert so ordering tests
// are deterministic; tests may edit Files directly to force timestamp ties.
type MemMetadataStore struct {
	mu    sync.Mutex
	Files []models.File

	InsertCalls int
	GetCalls    int
	ListCalls   int
	UpdateCalls int

	FailInsert error
	FailList   error
	FailUpdate error

	nextID uint
	clock  time.Time
}

func NewMemMetadataStore() *MemMetadataStore {
	return &MemMetadataStore{
		nextID: 1,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *MemMetadataStore) Insert(ctx context.Context, rec *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InsertCalls++
	if s.FailInsert != nil {
		return s.FailInsert
	}
	rec.ID = s.nextID
	rec.DateCreated = s.clock
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	s.Files = append(s.Files, *rec)
	return nil
}

func (s *MemMetadataStore) Get(ctx context.Context, id uint) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls++
	for _, f := range s.Files {
		if f.ID == id {
			rec := f
			return &rec, nil
		}
	}
	return nil, registry.ErrNotFound
}

func (s *MemMetadataStore) List(ctx context.Context, offset, limit int) ([]models.File, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.FailList != nil {
		return nil, 0, s.FailList
	}

	rows := make([]models.File, len(s.Files))
	copy(rows, s.Files)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].DateCreated.Equal(rows[j].DateCreated) {
			return rows[i].DateCreated.Before(rows[j].DateCreated)
		}
		return rows[i].ID < rows[j].ID
	})

	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (s *MemMetadataStore) UpdateStatus(ctx context.Context, id uint, status models.FileStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	for i := range s.Files {
		if s.Files[i].ID == id {
			s.Files[i].Status = status
			return nil
		}
	}
	return registry.ErrNotFound
}

func (s *MemMetadataStore) ListFilenamesByStatus(ctx context.Context, status models.FileStatus) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var names []string
	for _, f := range s.Files {
		if f.Status != status {
			continue
		}
		if _, ok := seen[f.Filename]; ok {
			continue
		}
		seen[f.Filename] = struct{}{}
		names = append(names, f.Filename)
	}
	return names, nil
}

// TotalCalls is the sum of every backend call across both doubles, used to
// assert that gated requests never touched a backend.
func TotalCalls(objects *MemObjectStore, metadata *MemMetadataStore) int {
	objects.mu.Lock()
	o := objects.PutCalls + objects.PresignCalls + objects.DeleteCalls
	objects.mu.Unlock()
	metadata.mu.Lock()
	m := metadata.InsertCalls + metadata.GetCalls + metadata.ListCalls + metadata.UpdateCalls
	metadata.mu.Unlock()
	return o + m
}
