package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// ErrUnknownSession is returned for IDs the store does not hold, either never
// created or evicted after being idle.
var ErrUnknownSession = errors.New("unknown session")

// Store holds live sessions. A session idle for longer than the store's TTL is
// evicted; every lookup resets its idle timer.
type Store struct {
	cache *ttlcache.Cache[string, *Session]
}

// NewStore creates a store. A zero idleTTL keeps sessions until deleted.
func NewStore(idleTTL time.Duration) *Store {
	c := ttlcache.New[string, *Session](
		ttlcache.WithTTL[string, *Session](idleTTL),
	)
	go c.Start()
	return &Store{cache: c}
}

// Create starts a session under a fresh random ID.
func (st *Store) Create() *Session {
	sess := New(uuid.NewString())
	st.cache.Set(sess.ID(), sess, ttlcache.DefaultTTL)
	return sess
}

// Get returns the session with id.
func (st *Store) Get(id string) (*Session, error) {
	item := st.cache.Get(id)
	if item == nil {
		return nil, ErrUnknownSession
	}
	return item.Value(), nil
}

// GetOrCreate returns the session with id, creating it when absent. Socket
// clients choose their own IDs; an empty id gets a fresh one.
func (st *Store) GetOrCreate(id string) *Session {
	if id == "" {
		return st.Create()
	}
	item, _ := st.cache.GetOrSetFunc(id, func() *Session { return New(id) })
	return item.Value()
}

// Delete removes the session with id and reports whether it existed.
func (st *Store) Delete(id string) bool {
	_, found := st.cache.GetAndDelete(id)
	return found
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	return st.cache.Len()
}

// Close stops the eviction loop.
func (st *Store) Close() {
	st.cache.Stop()
}
