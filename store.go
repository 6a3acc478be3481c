package neohub

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// store holds the mirrored state. Writers publish a fresh State for every
// change, so readers load the current snapshot without locking.
type store struct {
	snapshot atomic.Pointer[State]
	writeMu  sync.Mutex
}

func newStore() *store {
	s := &store{}
	empty := State{}
	s.snapshot.Store(&empty)
	return s
}

func (s *store) load() State {
	return *s.snapshot.Load()
}

// replace drops everything held so far in favour of next.
func (s *store) replace(next State) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.snapshot.Store(&next)
}

// patchPartition overwrites the status of an existing partition. It reports
// false when the session or partition is not known.
func (s *store) patchPartition(sessionID string, number int, status *PartitionStatus) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.load()
	sess, ok := cur[sessionID]
	if !ok {
		return false
	}
	p, ok := sess.Partitions[number]
	if !ok {
		return false
	}
	if status == nil {
		return true
	}

	p.Status = *status
	sess = sess.clone()
	sess.Partitions[number] = p
	s.publish(cur, sess)
	return true
}

// patchZone overwrites the open flag and/or the partition membership of an
// existing zone. Nil arguments leave the field untouched.
func (s *store) patchZone(sessionID string, number int, open *bool, partitions *[]int) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.load()
	sess, ok := cur[sessionID]
	if !ok {
		return false
	}
	z, ok := sess.Zones[number]
	if !ok {
		return false
	}
	if open == nil && partitions == nil {
		return true
	}

	if open != nil {
		z.Open = *open
	}
	if partitions != nil {
		z.Partitions = slices.Clone(*partitions)
	}
	sess = sess.clone()
	sess.Zones[number] = z
	s.publish(cur, sess)
	return true
}

func (s *store) publish(cur State, sess Session) {
	next := maps.Clone(cur)
	next[sess.ID] = sess
	s.snapshot.Store(&next)
}
