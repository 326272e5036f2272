package tiered

import (
	"context"
	"fmt"
	"sync"

	"resume-screener/internal/shared/metrics"
	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/telemetry"
)

// Source names the tier a read was served from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// PersistenceError reports a failed remote write. The local tier still
// holds the change, so callers treat it as a warning.
type PersistenceError struct {
	Resource string
	Op       string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %s: %v", e.Resource, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ListFunc reads the full remote collection.
type ListFunc[T any] func(ctx context.Context) ([]T, error)

// Store combines a remote tier with a local cache document. Reads prefer
// the remote tier when it answers and mirror it locally; otherwise the local
// document is authoritative. Writes always land locally and are attempted
// remotely on a best-effort basis.
type Store[T any] struct {
	resource string
	key      string
	cache    *localcache.Cache
	remote   ListFunc[T]

	mu sync.Mutex
}

// New builds a store. A nil remote means the remote tier is unconfigured.
func New[T any](resource, key string, cache *localcache.Cache, remote ListFunc[T]) *Store[T] {
	return &Store[T]{resource: resource, key: key, cache: cache, remote: remote}
}

// RemoteConfigured reports whether a remote tier exists.
func (s *Store[T]) RemoteConfigured() bool {
	return s.remote != nil
}

// Load returns the collection and the tier it came from.
func (s *Store[T]) Load(ctx context.Context) ([]T, Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remote != nil {
		items, err := s.remote(ctx)
		if err == nil {
			if items == nil {
				items = []T{}
			}
			if err := s.cache.Save(ctx, s.key, items); err != nil {
				telemetry.Warn("persistence.mirror_failed", telemetry.Fields{
					"resource": s.resource,
					"err":      err,
				})
			}
			return items, SourceRemote, nil
		}
		telemetry.Warn("persistence.fallback", telemetry.Fields{
			"resource": s.resource,
			"op":       "list",
			"err":      err,
		})
	}

	items, err := s.loadLocal(ctx)
	if err != nil {
		return nil, SourceLocal, err
	}
	return items, SourceLocal, nil
}

// Apply runs remoteOp against the remote tier when one is configured, then
// rewrites the local document with localOp. A remote failure is returned as
// *PersistenceError alongside the updated local collection.
func (s *Store[T]) Apply(ctx context.Context, op string, remoteOp func(ctx context.Context) error, localOp func([]T) []T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var persistErr error
	if s.remote != nil && remoteOp != nil {
		if err := remoteOp(ctx); err != nil {
			persistErr = &PersistenceError{Resource: s.resource, Op: op, Err: err}
			metrics.IncPersistFallback()
			telemetry.Warn("persistence.fallback", telemetry.Fields{
				"resource": s.resource,
				"op":       op,
				"err":      err,
			})
		}
	}

	current, err := s.loadLocal(ctx)
	if err != nil {
		return nil, err
	}
	next := localOp(current)
	if next == nil {
		next = []T{}
	}
	if err := s.cache.Save(ctx, s.key, next); err != nil {
		return nil, fmt.Errorf("save local %s: %w", s.resource, err)
	}
	return next, persistErr
}

func (s *Store[T]) loadLocal(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := s.cache.Load(ctx, s.key, &items); err != nil {
		return nil, fmt.Errorf("load local %s: %w", s.resource, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
