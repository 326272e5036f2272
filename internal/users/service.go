package users

import (
	"context"
	"errors"
	"strings"
	"sync"

	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/storage/tiered"
	"resume-screener/internal/shared/util"
)

// Service manages accounts over the two-tier store.
type Service struct {
	repo  Repo
	store *tiered.Store[User]
	ids   *util.IDSource
	mu    sync.Mutex
}

// NewService builds the service. A nil repo leaves only the local tier.
func NewService(repo Repo, cache *localcache.Cache, ids *util.IDSource) *Service {
	var remote tiered.ListFunc[User]
	if repo != nil {
		remote = repo.List
	}
	if ids == nil {
		ids = util.NewIDSource(nil)
	}
	return &Service{
		repo:  repo,
		store: tiered.New("users", localcache.KeyUsers, cache, remote),
		ids:   ids,
	}
}

// NewUser is the input for Add.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Position string `json:"position"`
}

// List returns all accounts, seeding the default admin when there are none.
func (s *Service) List(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	all, err := s.List(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range all {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// Exists reports whether an account with id is known.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Login matches a username and password against the stored accounts.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	all, err := s.List(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range all {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return User{}, errBadCredentials()
}

// Add creates a member account.
func (s *Service) Add(ctx context.Context, in NewUser) (User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || strings.TrimSpace(in.Password) == "" {
		return User{}, ErrCredentialsRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.list(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range all {
		if u.Username == username {
			return User{}, ErrUsernameTaken
		}
	}

	id, now := s.ids.Next()
	position := strings.TrimSpace(in.Position)
	if position == "" {
		position = defaultMemberPosition
	}
	user := User{
		ID:        id,
		Username:  username,
		Password:  in.Password,
		Role:      RoleMember,
		Position:  position,
		CreatedAt: now,
	}
	_, err = s.store.Apply(ctx, "create", s.remoteInsert(user), func(cur []User) []User {
		return append(cur, user)
	})
	if err := ignorePersistence(err); err != nil {
		return User{}, err
	}
	return user, nil
}

// Delete removes an account. The administrator cannot be removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == AdminID {
		return ErrAdminUndeletable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.list(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, u := range all {
		if u.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	var remoteOp func(context.Context) error
	if s.repo != nil {
		remoteOp = func(ctx context.Context) error { return s.repo.Delete(ctx, id) }
	}
	_, err = s.store.Apply(ctx, "delete", remoteOp, func(cur []User) []User {
		out := cur[:0]
		for _, u := range cur {
			if u.ID != id {
				out = append(out, u)
			}
		}
		return out
	})
	return ignorePersistence(err)
}

func (s *Service) list(ctx context.Context) ([]User, error) {
	all, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		return all, nil
	}
	admin := DefaultAdmin(s.ids.NowMillis())
	all, err = s.store.Apply(ctx, "bootstrap", s.remoteInsert(admin), func([]User) []User {
		return []User{admin}
	})
	if err := ignorePersistence(err); err != nil {
		return nil, err
	}
	return all, nil
}

func (s *Service) remoteInsert(user User) func(context.Context) error {
	if s.repo == nil {
		return nil
	}
	return func(ctx context.Context) error { return s.repo.Insert(ctx, user) }
}

// ignorePersistence drops remote write failures; the local tier already
// holds the change and the store has logged it.
func ignorePersistence(err error) error {
	var perr *tiered.PersistenceError
	if errors.As(err, &perr) {
		return nil
	}
	return err
}
