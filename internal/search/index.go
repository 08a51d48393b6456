package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// mappingVersion is bumped whenever the document mapping changes, so an
// on-disk index written with an older mapping is rebuilt at startup.
const mappingVersion = "1"

const (
	indexDirName    = "search.bleve"
	versionFileName = "search.version"

	// indexBatchSize bounds memory during a full catalog reindex.
	indexBatchSize = 500
)

// SearchIndex wraps a bleve index over the catalog.
//
// All methods are safe for concurrent use. Rebuild takes the write lock,
// so readers never observe a half-replaced index.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory holding the index and its version file
	Logger   *slog.Logger // Logs to stderr when nil
}

// NewSearchIndex opens the index under opts.DataPath, recreating it when
// it is missing, unreadable, or was written with an older mapping version.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, indexDirName)

	index, created, err := openOrCreate(opts.DataPath, indexPath, logger)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// openOrCreate returns an open index, dropping on-disk state that cannot
// be reused. created reports whether a fresh index was built.
func openOrCreate(dataPath, indexPath string, logger *slog.Logger) (bleve.Index, bool, error) {
	if _, err := os.Stat(indexPath); err == nil {
		if reason := staleReason(dataPath); reason != "" {
			logger.Info("rebuilding search index", "reason", reason, "mapping_version", mappingVersion)
		} else {
			index, openErr := bleve.Open(indexPath)
			if openErr == nil {
				return index, false, nil
			}
			logger.Warn("search index unreadable, recreating", "path", indexPath, "error", openErr)
		}
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, false, fmt.Errorf("remove old index: %w", err)
		}
	}

	index, err := createFresh(dataPath, indexPath, logger)
	if err != nil {
		return nil, false, err
	}
	return index, true, nil
}

// staleReason reports why the on-disk index cannot be reused, or "" when
// its recorded mapping version matches the current one.
func staleReason(dataPath string) string {
	version, err := os.ReadFile(filepath.Join(dataPath, versionFileName))
	if err != nil {
		return "missing version file"
	}
	if string(version) != mappingVersion {
		return "mapping version " + string(version)
	}
	return ""
}

func createFresh(dataPath, indexPath string, logger *slog.Logger) (bleve.Index, error) {
	index, err := bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	versionPath := filepath.Join(dataPath, versionFileName)
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	return index, nil
}

// Close releases the on-disk index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces a single document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Maps keep field names aligned with the lowercase mapping.
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments writes documents in chunks of indexBatchSize.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for len(docs) > 0 {
		n := min(indexBatchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[:n] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}

		docs = docs[n:]
	}
	return nil
}

// DeleteDocument removes a document from the index.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and recreates it empty with the current mapping.
// Callers must follow up with a full reindex of the catalog.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
