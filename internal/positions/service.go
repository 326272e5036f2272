package positions

import (
	"context"
	"errors"
	"strings"
	"sync"

	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/storage/tiered"
	"resume-screener/internal/shared/util"
)

// Service manages positions over the two-tier store.
type Service struct {
	repo  Repo
	store *tiered.Store[Position]
	ids   *util.IDSource
	mu    sync.Mutex
}

// NewService builds the service. A nil repo leaves only the local tier.
func NewService(repo Repo, cache *localcache.Cache, ids *util.IDSource) *Service {
	var remote tiered.ListFunc[Position]
	if repo != nil {
		remote = repo.List
	}
	if ids == nil {
		ids = util.NewIDSource(nil)
	}
	return &Service{
		repo:  repo,
		store: tiered.New("positions", localcache.KeyPositions, cache, remote),
		ids:   ids,
	}
}

// Input is the editable part of a position.
type Input struct {
	Name           string `json:"name"`
	JobDescription string `json:"jobDescription"`
}

func (s *Service) List(ctx context.Context) ([]Position, error) {
	all, _, err := s.store.Load(ctx)
	return all, err
}

// Get returns one position by id.
func (s *Service) Get(ctx context.Context, id string) (Position, error) {
	all, err := s.List(ctx)
	if err != nil {
		return Position{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return Position{}, ErrNotFound
}

func (s *Service) Create(ctx context.Context, in Input) (Position, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Position{}, ErrNameRequired
	}
	id, now := s.ids.Next()
	p := Position{ID: id, Name: name, JobDescription: strings.TrimSpace(in.JobDescription), CreatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.store.Apply(ctx, "create", s.remote(func(ctx context.Context) error {
		return s.repo.Insert(ctx, p)
	}), func(cur []Position) []Position {
		return append(cur, p)
	})
	if err := ignorePersistence(err); err != nil {
		return Position{}, err
	}
	return p, nil
}

// Update renames a position and replaces its job description.
func (s *Service) Update(ctx context.Context, id string, in Input) (Position, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Position{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.Get(ctx, id)
	if err != nil {
		return Position{}, err
	}
	current.Name = name
	current.JobDescription = strings.TrimSpace(in.JobDescription)

	_, err = s.store.Apply(ctx, "update", s.remote(func(ctx context.Context) error {
		return s.repo.Update(ctx, current)
	}), func(cur []Position) []Position {
		for i := range cur {
			if cur[i].ID == id {
				cur[i].Name = current.Name
				cur[i].JobDescription = current.JobDescription
			}
		}
		return cur
	})
	if err := ignorePersistence(err); err != nil {
		return Position{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.store.Apply(ctx, "delete", s.remote(func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}), func(cur []Position) []Position {
		out := cur[:0]
		for _, p := range cur {
			if p.ID != id {
				out = append(out, p)
			}
		}
		return out
	})
	return ignorePersistence(err)
}

func (s *Service) remote(op func(context.Context) error) func(context.Context) error {
	if s.repo == nil {
		return nil
	}
	return op
}

func ignorePersistence(err error) error {
	var perr *tiered.PersistenceError
	if errors.As(err, &perr) {
		return nil
	}
	return err
}
