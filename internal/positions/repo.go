package positions

import "context"

// Repo is the remote tier for positions.
type Repo interface {
	List(ctx context.Context) ([]Position, error)
	Insert(ctx context.Context, p Position) error
	Update(ctx context.Context, p Position) error
	Delete(ctx context.Context, id string) error
}
