// Package sweeper reconciles the object store against the metadata store.
// Upload and Delete are not transactional across the two backends, so a
// failed half leaves drift behind: objects with no live row (orphans, e.g. a
// metadata insert that failed after the put) and UPLOADED rows whose object
// is gone (phantoms). The sweep reports both; removing orphans is opt-in.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danushadhitya/file-manager/internal/models"
)

type ObjectLister interface {
	ListKeys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type MetadataLister interface {
	ListFilenamesByStatus(ctx context.Context, status models.FileStatus) ([]string, error)
}

// Report is the outcome of one sweep.
type Report struct {
	OrphanedObjects []string // object keys with no UPLOADED row
	PhantomRecords  []string // filenames of UPLOADED rows with no object
	RemovedOrphans  int
}

type Options struct {
	// RemoveOrphans deletes orphaned objects instead of only reporting them.
	RemoveOrphans bool
}

type Sweeper struct {
	objects  ObjectLister
	metadata MetadataLister
	opts     Options
	log      *zap.Logger
}

func New(objects ObjectLister, metadata MetadataLister, opts Options, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{objects: objects, metadata: metadata, opts: opts, log: log}
}

// Run performs one sweep. Both listings run concurrently; the comparison is
// a snapshot, so an upload racing the sweep can show up as a transient
// orphan, which is why orphan removal is off by default.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	var keys, live []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		keys, err = s.objects.ListKeys(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		live, err = s.metadata.ListFilenamesByStatus(gctx, models.StatusUploaded)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	liveSet := make(map[string]struct{}, len(live))
	for _, name := range live {
		liveSet[name] = struct{}{}
	}
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		keySet[key] = struct{}{}
	}

	report := &Report{}
	for _, key := range keys {
		if _, ok := liveSet[key]; !ok {
			report.OrphanedObjects = append(report.OrphanedObjects, key)
		}
	}
	for _, name := range live {
		if _, ok := keySet[name]; !ok {
			report.PhantomRecords = append(report.PhantomRecords, name)
		}
	}

	if s.opts.RemoveOrphans {
		for _, key := range report.OrphanedObjects {
			if err := s.objects.Delete(ctx, key); err != nil {
				s.log.Warn("failed to remove orphaned object",
					zap.String("key", key), zap.Error(err))
				continue
			}
			report.RemovedOrphans++
		}
	}

	s.log.Info("sweep finished",
		zap.Int("orphaned_objects", len(report.OrphanedObjects)),
		zap.Int("phantom_records", len(report.PhantomRecords)),
		zap.Int("removed_orphans", report.RemovedOrphans),
	)
	return report, nil
}

// RunEvery sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.log.Error("sweep failed", zap.Error(err))
			}
		}
	}
}
