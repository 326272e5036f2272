package util

import (
	"strconv"
	"sync"
	"time"
)

// IDSource mints millisecond-timestamp ids. Ids are strictly increasing, so
// two records created in the same millisecond never collide.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource builds a source. A nil clock uses time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns the next id together with the millisecond timestamp it encodes.
func (s *IDSource) Next() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10), ms
}

// NowMillis returns the current unix time in milliseconds.
func (s *IDSource) NowMillis() int64 {
	return s.now().UnixMilli()
}
