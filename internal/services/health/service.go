package health

import (
	"context"
	"time"
)

// Database states reported by Status.
const (
	DatabaseConnected    = "connected"
	DatabaseUnconfigured = "unconfigured"
	DatabaseUnreachable  = "unreachable"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports liveness and which persistence tier is serving.
type Service struct {
	db      Pinger
	timeout time.Duration
}

// NewService builds the service. A nil db means only the local cache is in use.
func NewService(db Pinger) *Service {
	return &Service{db: db, timeout: 2 * time.Second}
}

type Report struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Status never fails: an unreachable database still leaves the service up on
// the local cache.
func (s *Service) Status(ctx context.Context) Report {
	if s.db == nil {
		return Report{OK: true, Database: DatabaseUnconfigured}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return Report{OK: true, Database: DatabaseUnreachable}
	}
	return Report{OK: true, Database: DatabaseConnected}
}
