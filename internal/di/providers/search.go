package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/atoumapp/atoum-server/internal/config"
	"github.com/atoumapp/atoum-server/internal/logger"
	"github.com/atoumapp/atoum-server/internal/search"
	"github.com/atoumapp/atoum-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Search.IndexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, log.Logger), nil
}

// SyncSearchIndex brings the index in line with the catalog at startup.
// A configured rebuild wipes and reindexes everything; otherwise an empty
// index is populated from the store and a populated one is left alone.
// Should be called after all services are wired.
func SyncSearchIndex(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		ctx := context.Background()
		var err error
		if cfg.Search.RebuildOnStart {
			err = searchService.ReindexAll(ctx)
		} else {
			err = searchService.EnsureIndexed(ctx)
		}
		if err != nil {
			log.Error("Search index sync failed", "error", err)
			return
		}
		count, _ := searchService.DocumentCount()
		log.Info("Search index ready", "documents", count)
	}()
}
