package users

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/telemetry"
	"resume-screener/internal/shared/util"
)

type memoryRepo struct {
	mu      sync.Mutex
	users   []User
	failAll bool
}

func (r *memoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errors.New("connection refused")
	}
	return append([]User(nil), r.users...), nil
}

func (r *memoryRepo) Insert(ctx context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("connection refused")
	}
	r.users = append(r.users, user)
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errors.New("connection refused")
	}
	out := r.users[:0]
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	r.users = out
	return nil
}

func newTestService(t *testing.T, repo Repo) (*Service, *localcache.Cache) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(nil) })
	cache, err := localcache.New(t.TempDir())
	if err != nil {
		t.Fatalf("localcache.New: %v", err)
	}
	clock := time.UnixMilli(1735689600000)
	ids := util.NewIDSource(func() time.Time { return clock })
	return NewService(repo, cache, ids), cache
}

func TestListSeedsDefaultAdmin(t *testing.T) {
	repo := &memoryRepo{}
	svc, cache := newTestService(t, repo)

	all, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].ID != AdminID || all[0].Role != RoleAdmin || all[0].Position != "系统管理员" {
		t.Fatalf("unexpected seed %+v", all)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected admin inserted remotely, got %d", len(repo.users))
	}
	var local []User
	if ok, err := cache.Load(context.Background(), localcache.KeyUsers, &local); !ok || err != nil || len(local) != 1 {
		t.Fatalf("expected admin mirrored locally, ok=%v err=%v len=%d", ok, err, len(local))
	}
}

func TestLoginMatchesCredentials(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Login(ctx, "admin", "admin")
	if err != nil || user.ID != AdminID {
		t.Fatalf("expected admin login, got %+v %v", user, err)
	}
	_, err = svc.Login(ctx, "admin", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Message != "用户名或密码错误" {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestAddValidatesAndDefaults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, NewUser{Username: "  ", Password: "x"}); !errors.Is(err, ErrCredentialsRequired) {
		t.Fatalf("expected ErrCredentialsRequired, got %v", err)
	}
	user, err := svc.Add(ctx, NewUser{Username: " zhang ", Password: "pw"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if user.Username != "zhang" || user.Role != RoleMember || user.Position != "未指定" || user.ID != "1735689600000" {
		t.Fatalf("unexpected user %+v", user)
	}
	if _, err := svc.Add(ctx, NewUser{Username: "zhang", Password: "pw2"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestDeleteProtectsAdminAndRemovesFromBothTiers(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, AdminID); !errors.Is(err, ErrAdminUndeletable) {
		t.Fatalf("expected ErrAdminUndeletable, got %v", err)
	}
	user, err := svc.Add(ctx, NewUser{Username: "li", Password: "pw"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, u := range repo.users {
		if u.ID == user.ID {
			t.Fatalf("user still in remote tier")
		}
	}
	if _, err := svc.Get(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoteOutageFallsBackToLocal(t *testing.T) {
	repo := &memoryRepo{}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Add(ctx, NewUser{Username: "chen", Password: "pw"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	repo.failAll = true

	added, err := svc.Add(ctx, NewUser{Username: "offline", Password: "pw"})
	if err != nil {
		t.Fatalf("Add during outage should succeed locally: %v", err)
	}
	if _, err := svc.Login(ctx, "offline", "pw"); err != nil {
		t.Fatalf("expected local login for %s, got %v", added.ID, err)
	}
}
