package users

import (
	"context"
	"sync"
	"time"

	"resume-screener/internal/shared/storage/localcache"
)

// Session is a logged-in user snapshot kept in the local cache.
type Session struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionRegistry tracks live sessions so logout can revoke a token.
type SessionRegistry struct {
	cache *localcache.Cache
	now   func() time.Time
	mu    sync.Mutex
}

func NewSessionRegistry(cache *localcache.Cache, now func() time.Time) *SessionRegistry {
	if now == nil {
		now = time.Now
	}
	return &SessionRegistry{cache: cache, now: now}
}

// Register records a session and drops any that have expired.
func (r *SessionRegistry) Register(ctx context.Context, id string, user User, expiresAt time.Time) error {
	return r.update(ctx, func(all map[string]Session) {
		all[id] = Session{
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
			Position:  user.Position,
			CreatedAt: r.now().UTC(),
			ExpiresAt: expiresAt.UTC(),
		}
	})
}

// Active reports whether id is registered and unexpired.
func (r *SessionRegistry) Active(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	s, ok := all[id]
	return ok && r.now().Before(s.ExpiresAt), nil
}

// Revoke ends one session.
func (r *SessionRegistry) Revoke(ctx context.Context, id string) error {
	return r.update(ctx, func(all map[string]Session) {
		delete(all, id)
	})
}

// RevokeUser ends every session belonging to userID.
func (r *SessionRegistry) RevokeUser(ctx context.Context, userID string) error {
	return r.update(ctx, func(all map[string]Session) {
		for id, s := range all {
			if s.UserID == userID {
				delete(all, id)
			}
		}
	})
}

func (r *SessionRegistry) update(ctx context.Context, fn func(map[string]Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	now := r.now()
	for id, s := range all {
		if !now.Before(s.ExpiresAt) {
			delete(all, id)
		}
	}
	fn(all)
	return r.cache.Save(ctx, localcache.KeySessions, all)
}

func (r *SessionRegistry) load(ctx context.Context) (map[string]Session, error) {
	all := map[string]Session{}
	if _, err := r.cache.Load(ctx, localcache.KeySessions, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = map[string]Session{}
	}
	return all, nil
}
