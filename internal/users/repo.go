package users

import "context"

// Repo is the remote tier for accounts.
type Repo interface {
	List(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
}
