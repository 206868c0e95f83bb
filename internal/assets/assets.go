// Package assets loads files and models from a set of archives.
package assets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/vvardenfell/internal/logger"
	"github.com/Faultbox/vvardenfell/internal/model"
	"github.com/Faultbox/vvardenfell/pkg/bsa"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/encoding"
	"github.com/Faultbox/vvardenfell/pkg/nif"
)

// Manager handles asset loading from archives.
type Manager struct {
	archives []*bsa.Archive
	cache    *Cache
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewManager creates a new asset manager. cache may be nil to disable
// caching.
func NewManager(cache *Cache, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cache: cache, log: log}
}

// AddArchive opens an archive and adds it to the manager.
// Archives are searched in reverse order (last added = highest priority).
// The cache is cleared, since the new archive may shadow cached paths.
func (m *Manager) AddArchive(path string) error {
	archive, err := bsa.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive)
	m.mu.Unlock()
	m.cache.Clear()

	m.log.Debug("archive added",
		zap.String("path", path),
		zap.Int("files", len(archive.Entries())))
	return nil
}

// Cache returns the extracted-bytes cache, nil when disabled.
func (m *Manager) Cache() *Cache { return m.cache }

// Contains reports whether any archive holds path.
func (m *Manager) Contains(path string) bool {
	_, _, ok := m.find(path)
	return ok
}

func (m *Manager) find(path string) (*bsa.Archive, *bsa.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		if e, ok := m.archives[i].Lookup(path); ok {
			return m.archives[i], e, true
		}
	}
	return nil, nil, false
}

// Load returns the bytes of the file stored under path. The returned
// slice may be shared with the cache and must not be modified.
func (m *Manager) Load(path string) ([]byte, error) {
	key := encoding.NormalizeArchivePath(path)
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	archive, entry, ok := m.find(path)
	if !ok {
		return nil, dataerr.Format(path, "", 0, bsa.ErrNotFound)
	}
	data, err := archive.Extract(entry)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, data)
	return data, nil
}

// LoadModel extracts, parses and converts the model at path.
func (m *Manager) LoadModel(path string, opts model.BuildOptions) (*model.Scene, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	f, err := nif.Parse(data, path, m.log)
	if err != nil {
		return nil, err
	}
	if opts.Log == nil {
		opts.Log = m.log
	}
	scene, err := model.BuildScene(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scene, nil
}

// PreloadModels loads paths with at most workers models in flight.
// Models that fail to load are logged and left out of the result.
// Cancellation is checked before each model starts.
func (m *Manager) PreloadModels(ctx context.Context, paths []string, workers int, opts model.BuildOptions) (map[string]*model.Scene, error) {
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()

	var mu sync.Mutex
	scenes := make(map[string]*model.Scene, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			scene, err := m.LoadModel(path, opts)
			if err != nil {
				m.log.Warn("model not loaded", append(logger.ErrorFields(err), zap.String("path", path))...)
				return nil
			}
			mu.Lock()
			scenes[path] = scene
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	m.log.Info("models preloaded",
		zap.Int("requested", len(paths)),
		zap.Int("loaded", len(scenes)),
		zap.Duration("elapsed", time.Since(start)))
	return scenes, nil
}

// Close closes all archives.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, archive := range m.archives {
		archive.Close()
	}
	m.archives = nil
	m.cache.Clear()
}
