package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

type Options struct {
	Extensions map[string]struct{} // lowercased sans '.'; nil -> constants.AllowedExtensions
	SkipHidden bool
}

// ListDocuments walks root and returns every matching file as a Document, sorted by
// (folder, filename). Unreadable entries are counted and skipped.
func ListDocuments(root string, opts Options, logger *slog.Logger) ([]entity.Document, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var docs []entity.Document
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("ingest.walk.failed", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if !AllowedExt(ext, opts.Extensions) {
			return nil
		}
		stats.Matched++

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			rel = filepath.Dir(path)
		}
		docs = append(docs, entity.Document{
			Folder:   filepath.ToSlash(rel),
			Filename: d.Name(),
			FileType: constants.FileTypeOf(ext),
			Path:     path,
		})
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}

	SortDocuments(docs)
	logger.Info("ingest.list.ok", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return docs, stats, nil
}

// SortDocuments puts docs in batch order.
func SortDocuments(docs []entity.Document) {
	slices.SortStableFunc(docs, func(a, b entity.Document) int {
		if c := strings.Compare(a.Folder, b.Folder); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
}
