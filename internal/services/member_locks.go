package services

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberLocks serializes balance mutations per member. Purchase creation,
// rollover application and session start/end/void all read-modify-write the
// same two hour totals; taking the member's lock around each operation rules
// out lost updates between concurrent requests in this process.
//
// Locks are kept for the lifetime of the process; the per-member footprint is
// a single mutex.
type MemberLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

// NewMemberLocks creates an empty lock table.
func NewMemberLocks() *MemberLocks {
	return &MemberLocks{
		locks: make(map[primitive.ObjectID]*sync.Mutex),
	}
}

// Lock acquires the lock for a member and returns the matching unlock.
//
//	unlock := locks.Lock(memberID)
//	defer unlock()
func (l *MemberLocks) Lock(memberID primitive.ObjectID) func() {
	l.mu.Lock()
	m, ok := l.locks[memberID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[memberID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
