// Package cart keeps a single authoritative view of a customer's cart across
// two backing stores: a session-local cache (cookie on the web surface) and,
// for authenticated customers, the server-side cart table. The local copy is
// the source of truth for the running session; the server copy is advisory
// until the next successful hydration.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Local is the session-authoritative line store.
type Local interface {
	Load() []Line
	Store(lines []Line)
}

// Remote mirrors cart mutations for an authenticated customer. All calls are
// best-effort from the store's point of view. Add increments, Upsert sets;
// adds mirror as increments so rows written from another session are not
// clobbered.
type Remote interface {
	Fetch(ctx context.Context) ([]Line, error)
	Add(ctx context.Context, productCode string, delta int) error
	Upsert(ctx context.Context, productCode string, quantity int) error
	Remove(ctx context.Context, productCode string) error
	Clear(ctx context.Context) error
}

// Store is the cart façade. Mutations apply to the local store immediately and
// are mirrored to the remote asynchronously; a remote failure is logged and
// never rolls back the local change.
type Store struct {
	mu     sync.Mutex
	local  Local
	remote Remote
	now    func() time.Time

	// Monotonic arbiter for the hydration race: a fetch started before the
	// last local mutation must not clobber it.
	lastMutation time.Time

	wg sync.WaitGroup
}

func New(local Local, remote Remote) *Store {
	return &Store{local: local, remote: remote, now: time.Now}
}

// Items returns the current local view.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local.Load()
}

// AddItem inserts the line or, when the product is already present, increments
// its quantity. Quantities below one are treated as one.
func (s *Store) AddItem(line Line) []Line {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = s.now()
	}

	delta := line.Quantity

	s.mu.Lock()
	lines := s.local.Load()
	merged := false
	for i := range lines {
		if lines[i].ProductCode == line.ProductCode {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}
	s.local.Store(lines)
	s.lastMutation = s.now()
	s.mu.Unlock()

	// Mirrored as an increment so a concurrent add from another session does
	// not get overwritten.
	s.mirror(func(ctx context.Context, r Remote) error {
		return r.Add(ctx, line.ProductCode, delta)
	})
	return lines
}

// UpdateItem sets the quantity directly; zero or negative removes the line.
// Updating a product that is not in the cart is a no-op, locally and remotely.
func (s *Store) UpdateItem(productCode string, quantity int) []Line {
	if quantity <= 0 {
		return s.RemoveItem(productCode)
	}

	s.mu.Lock()
	lines := s.local.Load()
	matched := false
	for i := range lines {
		if lines[i].ProductCode == productCode {
			lines[i].Quantity = quantity
			matched = true
			break
		}
	}
	if !matched {
		s.mu.Unlock()
		return lines
	}
	s.local.Store(lines)
	s.lastMutation = s.now()
	s.mu.Unlock()

	s.mirror(func(ctx context.Context, r Remote) error {
		return r.Upsert(ctx, productCode, quantity)
	})
	return lines
}

// RemoveItem deletes the line. Removing an absent product is a no-op.
func (s *Store) RemoveItem(productCode string) []Line {
	s.mu.Lock()
	lines := s.local.Load()
	kept := lines[:0]
	for _, l := range lines {
		if l.ProductCode != productCode {
			kept = append(kept, l)
		}
	}
	s.local.Store(kept)
	s.lastMutation = s.now()
	s.mu.Unlock()

	s.mirror(func(ctx context.Context, r Remote) error {
		return r.Remove(ctx, productCode)
	})
	return kept
}

// Clear empties the cart for the current identity.
func (s *Store) Clear() {
	s.mu.Lock()
	s.local.Store(nil)
	s.lastMutation = s.now()
	s.mu.Unlock()

	s.mirror(func(ctx context.Context, r Remote) error {
		return r.Clear(ctx)
	})
}

// Hydrate fetches the server-side cart and overwrites the local cache with it,
// unless a local mutation landed after the fetch was issued; in that case the
// fetched copy is stale and gets discarded. Returns the resulting local view.
func (s *Store) Hydrate(ctx context.Context) ([]Line, error) {
	if s.remote == nil {
		return s.Items(), nil
	}
	start := s.now()
	fetched, err := s.remote.Fetch(ctx)
	if err != nil {
		return s.Items(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastMutation.After(start) {
		// The user touched the cart while the fetch was in flight; keep the
		// newer local state.
		return s.local.Load(), nil
	}
	s.local.Store(fetched)
	return fetched, nil
}

// Flush waits for in-flight remote mirroring. Used at session teardown and in
// tests; normal request handling never waits on it.
func (s *Store) Flush() {
	s.wg.Wait()
}

func (s *Store) mirror(op func(ctx context.Context, r Remote) error) {
	if s.remote == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := op(ctx, s.remote); err != nil {
			log.Error().Err(err).Msg("cart: remote mirror failed")
		}
	}()
}
