package history

import (
	"context"
	"errors"
	"strings"
	"sync"

	"resume-screener/internal/shared/metrics"
	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/storage/tiered"
	"resume-screener/internal/shared/util"
)

// UserDirectory resolves transfer targets.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service manages screening history over the two-tier store.
type Service struct {
	repo  Repo
	store *tiered.Store[Record]
	users UserDirectory
	ids   *util.IDSource
	mu    sync.Mutex
}

// NewService builds the service. A nil repo leaves only the local tier.
func NewService(repo Repo, cache *localcache.Cache, users UserDirectory, ids *util.IDSource) *Service {
	var remote tiered.ListFunc[Record]
	if repo != nil {
		remote = repo.List
	}
	if ids == nil {
		ids = util.NewIDSource(nil)
	}
	return &Service{
		repo:  repo,
		store: tiered.New("history", localcache.KeyHistory, cache, remote),
		users: users,
		ids:   ids,
	}
}

// NewRecord stamps a record with a fresh id and timestamp and fills the
// position default.
func (s *Service) NewRecord(positionName, jobDescription, specialRequirements, actor string, results []Entry) Record {
	id, now := s.ids.Next()
	if strings.TrimSpace(positionName) == "" {
		positionName = UnassignedPosition
	}
	return Record{
		ID:                  id,
		Timestamp:           now,
		PositionName:        positionName,
		JobDescription:      jobDescription,
		SpecialRequirements: specialRequirements,
		Results:             results,
		AssignedTo:          actor,
		CreatedBy:           actor,
	}
}

// Save prepends rec to the history. A *tiered.PersistenceError means the
// record is only held locally.
func (s *Service) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.store.Apply(ctx, "create", s.remote(func(ctx context.Context) error {
		return s.repo.Insert(ctx, rec)
	}), func(cur []Record) []Record {
		next := append([]Record{rec}, cur...)
		if len(next) > MaxRecords {
			next = next[:MaxRecords]
		}
		return next
	})
	var perr *tiered.PersistenceError
	if err == nil || errors.As(err, &perr) {
		metrics.IncHistorySaved()
	}
	return err
}

// Visible lists the records v may read, newest first.
func (s *Service) Visible(ctx context.Context, v Viewer) ([]Record, error) {
	all, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(all))
	for _, r := range all {
		if v.CanSee(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns one record when v may read it.
func (s *Service) Get(ctx context.Context, v Viewer, id string) (Record, error) {
	all, err := s.Visible(ctx, v)
	if err != nil {
		return Record{}, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// Transfer reassigns a record to another user. Only assignedTo changes.
func (s *Service) Transfer(ctx context.Context, id, to string) (Record, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return Record{}, ErrTargetRequired
	}
	if s.users != nil {
		ok, err := s.users.Exists(ctx, to)
		if err != nil {
			return Record{}, err
		}
		if !ok {
			return Record{}, ErrUnknownTarget
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.Get(ctx, Viewer{Admin: true}, id)
	if err != nil {
		return Record{}, err
	}
	rec.AssignedTo = to
	_, err = s.store.Apply(ctx, "transfer", s.remote(func(ctx context.Context) error {
		return s.repo.Assign(ctx, id, to)
	}), func(cur []Record) []Record {
		for i := range cur {
			if cur[i].ID == id {
				cur[i].AssignedTo = to
			}
		}
		return cur
	})
	if err := ignorePersistence(err); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Get(ctx, Viewer{Admin: true}, id); err != nil {
		return err
	}
	_, err := s.store.Apply(ctx, "delete", s.remote(func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}), func(cur []Record) []Record {
		out := cur[:0]
		for _, r := range cur {
			if r.ID != id {
				out = append(out, r)
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
