package history

import "context"

// Repo is the remote tier for history records.
type Repo interface {
	// List returns the newest MaxRecords records, newest first.
	List(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, r Record) error
	Assign(ctx context.Context, id, assignedTo string) error
	Delete(ctx context.Context, id string) error
}
