// Package content loads the configured content files into one merged
// database, reading and refreshing snapshots on the way.
package content

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/vvardenfell/internal/config"
	"github.com/Faultbox/vvardenfell/internal/logger"
	"github.com/Faultbox/vvardenfell/pkg/esm"
	"github.com/Faultbox/vvardenfell/pkg/snapshot"
)

// Source tells where a file's tables came from.
type Source string

const (
	FromSnapshot Source = "snapshot"
	FromParse    Source = "parse"
)

// FileResult describes one loaded content file.
type FileResult struct {
	Path    string
	Source  Source
	Elapsed time.Duration
	Tables  *esm.Tables
}

// Load parses the content files of cfg in load order and merges them.
// A fresh snapshot replaces the parse; after a parse the snapshot is
// rewritten, and a failed write is only logged. Cancellation is checked
// between files.
func Load(ctx context.Context, cfg *config.Config, log *zap.Logger) (*esm.Database, error) {
	db, _, err := LoadFiles(ctx, cfg, log)
	return db, err
}

// LoadFiles is Load that also reports per-file results.
func LoadFiles(ctx context.Context, cfg *config.Config, log *zap.Logger) (*esm.Database, []FileResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	db := esm.NewDatabase()
	var results []FileResult

	for _, path := range cfg.ContentPaths() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		res, err := loadFile(path, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		db.Merge(res.Tables)
		results = append(results, res)

		log.Info("content file loaded",
			zap.String("file", path),
			zap.String("source", string(res.Source)),
			zap.Duration("elapsed", res.Elapsed),
			zap.Int("cells", len(res.Tables.Cells)),
			zap.Int("statics", len(res.Tables.Statics)),
			zap.Int("skipped", res.Tables.Skipped))
	}

	log.Info("database ready",
		zap.Int("files", len(results)),
		zap.Int("cells", len(db.Cells)),
		zap.Duration("elapsed", time.Since(start)))
	return db, results, nil
}

func loadFile(path string, cfg *config.Config, log *zap.Logger) (FileResult, error) {
	start := time.Now()
	res := FileResult{Path: path}

	var cachePath string
	if cfg.Cache.Enabled {
		cachePath = snapshot.PathFor(cfg.CacheDir(), path)
		fresh, err := snapshot.Exists(path, cachePath)
		if err != nil {
			return res, err
		}
		if fresh {
			t, err := snapshot.Load(cachePath)
			if err == nil {
				res.Source = FromSnapshot
				res.Tables = t
				res.Elapsed = time.Since(start)
				return res, nil
			}
			log.Warn("snapshot unreadable, parsing source",
				append(logger.ErrorFields(err), zap.String("source", path), zap.String("snapshot", cachePath))...)
		}
	}

	t, err := esm.LoadFile(path, log)
	if err != nil {
		return res, err
	}
	res.Source = FromParse
	res.Tables = t
	res.Elapsed = time.Since(start)

	if cachePath != "" {
		if err := snapshot.Save(t, path, cachePath); err != nil {
			log.Warn("snapshot not saved", append(logger.ErrorFields(err), zap.String("source", path))...)
		}
	}
	return res, nil
}
