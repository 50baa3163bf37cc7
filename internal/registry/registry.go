// Package registry caches one query engine per document and rebuilds engines
// from stored files when a document is queried after eviction or a restart.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"docquery/internal/engine"
	"docquery/internal/model"
)

// ErrDocumentNotLoaded is returned when an engine cannot be built for a
// document (missing file, extraction or indexing failure).
var ErrDocumentNotLoaded = errors.New("document could not be loaded")

// Builder constructs an engine from a stored document: extract, split, index.
type Builder func(ctx context.Context, doc *model.Document) (*engine.Engine, error)

type Registry struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine
	build   Builder
	group   singleflight.Group
}

func New(build Builder) *Registry {
	return &Registry{
		engines: make(map[string]*engine.Engine),
		build:   build,
	}
}

// GetOrCreate returns the cached engine for doc, building it at most once per
// document even under concurrent calls.
func (r *Registry) GetOrCreate(ctx context.Context, doc *model.Document) (*engine.Engine, error) {
	r.mu.RLock()
	eng, ok := r.engines[doc.ID]
	r.mu.RUnlock()
	if ok {
		return eng, nil
	}

	v, err, _ := r.group.Do(doc.ID, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.engines[doc.ID]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		built, err := r.build(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDocumentNotLoaded, err)
		}

		r.mu.Lock()
		r.engines[doc.ID] = built
		r.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.Engine), nil
}

// Get returns the cached engine without building.
func (r *Registry) Get(documentID string) (*engine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[documentID]
	return eng, ok
}

// Remove evicts the engine for a deleted document. No-op if absent.
func (r *Registry) Remove(documentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, documentID)
}
