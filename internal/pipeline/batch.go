package pipeline

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/extract"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/path"
)

type resolved struct {
	value models.Value
	ok    bool
}

// Batch runs every request against the same document. Root lookups are
// shared between requests through an LRU cache sized by cache.size. A
// request that cannot run is reported in its Result.Error and does not stop
// the rest.
func (e *Engine) Batch(doc models.Value, reqs []Request) []Result {
	resolve := e.cachedResolver()

	results := make([]Result, 0, len(reqs))
	for i, req := range reqs {
		res, err := e.run(doc, req, resolve)
		if err != nil {
			e.logger.Warn("request failed", "index", i, "request", req.Name, "error", err)
			res = Result{
				Name:      req.Name,
				GraphType: req.GraphType,
				Roots:     req.Roots,
				Params:    req.Params,
				Error:     errors.UserFriendlyError(err),
			}
		}
		results = append(results, res)
	}
	return results
}

// cachedResolver memoizes root resolution by path text. The cache lives for
// one batch, so every entry refers to the same document.
func (e *Engine) cachedResolver() extract.Resolver {
	if e.cfg.Cache.Size <= 0 {
		return path.ResolveString
	}
	cache, err := lru.New[string, resolved](e.cfg.Cache.Size)
	if err != nil {
		e.logger.Warn("root cache disabled", "error", err)
		return path.ResolveString
	}

	return func(doc models.Value, p string) (models.Value, bool) {
		if hit, ok := cache.Get(p); ok {
			e.logger.Debug("root cache hit", "path", p)
			return hit.value, hit.ok
		}
		v, ok := path.ResolveString(doc, p)
		cache.Add(p, resolved{value: v, ok: ok})
		return v, ok
	}
}
