package journal

import (
	"strconv"
	"sync"

	"markjournal/internal/kv"
)

// LocalScope is the collection used when no account is involved.
const LocalScope = "local"

// UserScope names the collection of an account.
func UserScope(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// Stores hands out one Store per scope over a shared backend, so every
// request for the same collection goes through the same lock.
type Stores struct {
	storage kv.Storage
	opts    []Option

	mu      sync.Mutex
	byScope map[string]*Store
}

func NewStores(storage kv.Storage, opts ...Option) *Stores {
	return &Stores{storage: storage, opts: opts, byScope: map[string]*Store{}}
}

// For returns the Store for scope, creating it on first use.
func (s *Stores) For(scope string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.byScope[scope]; ok {
		return st
	}
	st := New(kv.Scope(s.storage, scope), s.opts...)
	s.byScope[scope] = st
	return st
}

// ForUser is For(UserScope(userID)).
func (s *Stores) ForUser(userID int) *Store {
	return s.For(UserScope(userID))
}
