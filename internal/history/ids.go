package history

import (
	"sync"
	"time"
)

// IDSequence issues calculation ids from the wall clock in milliseconds,
// bumping by one whenever the clock has not moved past the last id. Ids stay
// compatible with millisecond-timestamp ids in older ledgers while two
// records in the same millisecond still get distinct, increasing ids.
type IDSequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSequence constructs a sequence driven by now. A nil now uses time.Now.
func NewIDSequence(now func() time.Time) *IDSequence {
	if now == nil {
		now = time.Now
	}
	return &IDSequence{now: now}
}

// Next returns an id greater than every id issued or observed so far.
func (s *IDSequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe raises the floor so later ids exceed id.
func (s *IDSequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}
