package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLocal struct {
	mu    sync.Mutex
	lines []Line
}

func (m *memLocal) Load() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

func (m *memLocal) Store(lines []Line) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = make([]Line, len(lines))
	copy(m.lines, lines)
}

type fakeRemote struct {
	mu      sync.Mutex
	rows    map[string]int
	fetch   []Line
	failAll bool

	// invoked between starting a Fetch and returning its result
	duringFetch func()
}

func newFakeRemote() *fakeRemote { return &fakeRemote{rows: map[string]int{}} }

func (f *fakeRemote) Fetch(ctx context.Context) ([]Line, error) {
	if f.duringFetch != nil {
		f.duringFetch()
	}
	if f.failAll {
		return nil, errors.New("boom")
	}
	return f.fetch, nil
}

func (f *fakeRemote) Add(ctx context.Context, code string, delta int) error {
	if f.failAll {
		return errors.New("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[code] += delta
	return nil
}

func (f *fakeRemote) Upsert(ctx context.Context, code string, qty int) error {
	if f.failAll {
		return errors.New("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[code] = qty
	return nil
}

func (f *fakeRemote) Remove(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, code)
	return nil
}

func (f *fakeRemote) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = map[string]int{}
	return nil
}

// tickClock returns a clock that advances one millisecond per call, so
// ordering comparisons are strict even on coarse platform clocks.
func tickClock() func() time.Time {
	var mu sync.Mutex
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	s := New(&memLocal{}, nil)

	s.AddItem(Line{ProductCode: "P-001", Name: "Гривна", Price: 12.50, Quantity: 2})
	lines := s.AddItem(Line{ProductCode: "P-001", Quantity: 3})

	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Гривна", lines[0].Name)
}

func TestUpdateItemZeroRemoves(t *testing.T) {
	s := New(&memLocal{}, nil)
	s.AddItem(Line{ProductCode: "P-001", Quantity: 2})
	s.AddItem(Line{ProductCode: "P-002", Quantity: 1})

	lines := s.UpdateItem("P-001", 0)

	require.Len(t, lines, 1)
	assert.Equal(t, "P-002", lines[0].ProductCode)
}

func TestRemoveItemIdempotent(t *testing.T) {
	s := New(&memLocal{}, nil)
	s.AddItem(Line{ProductCode: "P-001", Quantity: 1})

	s.RemoveItem("P-001")
	lines := s.RemoveItem("P-001")

	assert.Empty(t, lines)
}

func TestMirrorWritesThrough(t *testing.T) {
	remote := newFakeRemote()
	s := New(&memLocal{}, remote)

	s.AddItem(Line{ProductCode: "P-001", Quantity: 2})
	s.AddItem(Line{ProductCode: "P-001", Quantity: 3})
	s.Flush()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, 5, remote.rows["P-001"])
}

func TestAddItemMirrorsIncrementOverForeignRows(t *testing.T) {
	remote := newFakeRemote()
	// A row written from another session.
	remote.rows["P-001"] = 10
	s := New(&memLocal{}, remote)

	s.AddItem(Line{ProductCode: "P-001", Quantity: 2})
	s.Flush()

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, 12, remote.rows["P-001"])
}

func TestUpdateAbsentItemIsNoOp(t *testing.T) {
	remote := newFakeRemote()
	s := New(&memLocal{}, remote)
	s.AddItem(Line{ProductCode: "P-001", Quantity: 1})
	s.Flush()

	lines := s.UpdateItem("GHOST", 4)
	s.Flush()

	require.Len(t, lines, 1)
	assert.Equal(t, "P-001", lines[0].ProductCode)
	remote.mu.Lock()
	defer remote.mu.Unlock()
	// No server row appears for a product the local cart never held.
	_, ok := remote.rows["GHOST"]
	assert.False(t, ok)
}

func TestMirrorFailureKeepsLocalState(t *testing.T) {
	remote := newFakeRemote()
	remote.failAll = true
	s := New(&memLocal{}, remote)

	lines := s.AddItem(Line{ProductCode: "P-001", Quantity: 2})
	s.Flush()

	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestHydrateOverwritesLocal(t *testing.T) {
	remote := newFakeRemote()
	remote.fetch = []Line{{ProductCode: "P-009", Quantity: 4}}
	s := New(&memLocal{}, remote)
	s.AddItem(Line{ProductCode: "P-001", Quantity: 1})
	s.Flush()

	lines, err := s.Hydrate(context.Background())

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "P-009", lines[0].ProductCode)
}

func TestHydrateDiscardedWhenLocalMutationIsNewer(t *testing.T) {
	remote := newFakeRemote()
	remote.fetch = []Line{{ProductCode: "SERVER", Quantity: 1}}
	s := New(&memLocal{}, remote)
	s.now = tickClock()

	// A local add lands while the hydration fetch is in flight.
	remote.duringFetch = func() {
		s.AddItem(Line{ProductCode: "LOCAL", Quantity: 1})
	}

	lines, err := s.Hydrate(context.Background())
	s.Flush()

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "LOCAL", lines[0].ProductCode)
}

func TestHydrateFetchErrorKeepsLocal(t *testing.T) {
	remote := newFakeRemote()
	remote.failAll = true
	s := New(&memLocal{}, remote)
	s.AddItem(Line{ProductCode: "P-001", Quantity: 1})
	s.Flush()

	lines, err := s.Hydrate(context.Background())

	assert.Error(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "P-001", lines[0].ProductCode)
}

func TestLineDateRoundTrip(t *testing.T) {
	l := Line{ProductCode: "P-001", Quantity: 1, AddedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

	b, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"addedAt":"2025-01-02T03:04:05Z"`)

	var back Line
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.AddedAt.Equal(l.AddedAt))
}

func TestLineBadDateFallsBackToNow(t *testing.T) {
	before := time.Now().Add(-time.Second)

	var l Line
	require.NoError(t, json.Unmarshal([]byte(`{"productCode":"P-001","quantity":2,"addedAt":"whenever"}`), &l))

	assert.True(t, l.AddedAt.After(before))
	assert.Equal(t, 2, l.Quantity)
}

func TestLineMissingQuantityDefaultsToOne(t *testing.T) {
	var l Line
	require.NoError(t, json.Unmarshal([]byte(`{"productCode":"P-001"}`), &l))
	assert.Equal(t, 1, l.Quantity)
	assert.NotNil(t, l.Images)
}
