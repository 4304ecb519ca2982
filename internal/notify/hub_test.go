package notify

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage/sqlite"
)

type item struct {
	id    string
	value int
}

func itemKey(i item) string     { return i.id }
func itemEqual(a, b item) bool  { return a == b }
func keys(ids ...string) []item { return withValue(0, ids...) }

func withValue(v int, ids ...string) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{id: id, value: v}
	}
	return out
}

type source struct {
	mu    sync.Mutex
	items []item
	err   error
	reads int
}

func (s *source) set(items []item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

func (s *source) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *source) query() ([]item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return append([]item(nil), s.items...), nil
}

type recorder[T any] struct {
	mu      sync.Mutex
	changes []Change[T]
}

func (r *recorder[T]) record(c Change[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder[T]) all() []Change[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change[T](nil), r.changes...)
}

func newReadyHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	h.MarkReady(nil)
	t.Cleanup(h.Close)
	return h
}

func TestDiffLists(t *testing.T) {
	tests := []struct {
		name     string
		old, new []item
		want     Diff
	}{
		{"no change", keys("a", "b"), keys("a", "b"), Diff{}},
		{"delete middle", keys("a", "b", "c"), keys("a", "c"), Diff{Deletions: []int{1}}},
		{"insert middle", keys("a", "b"), keys("a", "x", "b"), Diff{Insertions: []int{1}}},
		{"from empty", nil, keys("a", "b"), Diff{Insertions: []int{0, 1}}},
		{"to empty", keys("a", "b"), nil, Diff{Deletions: []int{0, 1}}},
		{"move last to front", keys("a", "b", "c"), keys("c", "a", "b"), Diff{Deletions: []int{2}, Insertions: []int{0}}},
		{
			"modification uses new index",
			keys("a", "b", "c"),
			[]item{{id: "x"}, {id: "a"}, {id: "b", value: 1}, {id: "c"}},
			Diff{Insertions: []int{0}, Modifications: []int{2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffLists(tt.old, tt.new, itemKey, itemEqual)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWatchInitialThenUpdate(t *testing.T) {
	h := newReadyHub(t)
	src := &source{items: keys("a", "b")}
	rec := &recorder[item]{}

	tok := Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, rec.record)
	defer tok.Stop()
	h.Sync()

	src.set(keys("a", "b", "c"))
	h.Notify(models.ScopeStash)
	h.Sync()

	changes := rec.all()
	require.Len(t, changes, 2)
	assert.Equal(t, Initial, changes[0].Kind)
	assert.Len(t, changes[0].Items, 2)
	assert.Equal(t, Update, changes[1].Kind)
	assert.Equal(t, []int{2}, changes[1].Insertions)
	assert.Len(t, changes[1].Items, 3)
}

func TestWatchSuppressesEmptyDiff(t *testing.T) {
	h := newReadyHub(t)
	src := &source{items: keys("a")}
	rec := &recorder[item]{}

	Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, rec.record)
	h.Sync()
	h.Notify(models.ScopeStash)
	h.Sync()

	assert.Len(t, rec.all(), 1)
}

func TestWatchIgnoresOtherScopes(t *testing.T) {
	h := newReadyHub(t)
	src := &source{items: keys("a")}
	rec := &recorder[item]{}

	Watch(h, []models.Scope{models.ScopeStash, models.ScopeProducts}, src.query, itemKey, itemEqual, rec.record)
	h.Sync()
	h.Notify(models.ScopeWishList, models.ScopeLogs)
	h.Sync()

	src.mu.Lock()
	reads := src.reads
	src.mu.Unlock()
	assert.Equal(t, 1, reads)

	h.Notify(models.ScopeProducts)
	h.Sync()
	src.mu.Lock()
	reads = src.reads
	src.mu.Unlock()
	assert.Equal(t, 2, reads)
}

func TestWatchErrorIsFinal(t *testing.T) {
	h := newReadyHub(t)
	src := &source{items: keys("a")}
	rec := &recorder[item]{}
	boom := errors.New("boom")

	Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, rec.record)
	h.Sync()
	src.fail(boom)
	h.Notify(models.ScopeStash)
	h.Sync()
	src.fail(nil)
	src.set(keys("a", "b"))
	h.Notify(models.ScopeStash)
	h.Sync()

	changes := rec.all()
	require.Len(t, changes, 2)
	assert.Equal(t, Error, changes[1].Kind)
	assert.ErrorIs(t, changes[1].Err, boom)
}

func TestReadyGate(t *testing.T) {
	h := NewHub()
	defer h.Close()
	src := &source{items: keys("a")}
	rec := &recorder[item]{}

	Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, rec.record)
	h.Notify(models.ScopeStash)
	h.Sync()
	assert.Empty(t, rec.all(), "nothing is delivered before the gate opens")

	h.MarkReady(nil)
	h.Sync()
	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Equal(t, Initial, changes[0].Kind)
}

func TestReadyGateFailure(t *testing.T) {
	h := NewHub()
	defer h.Close()
	src := &source{items: keys("a")}
	before := &recorder[item]{}
	after := &recorder[item]{}
	bad := errors.New("bad credentials")

	Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, before.record)
	h.MarkReady(bad)
	Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, after.record)
	h.Sync()

	for _, rec := range []*recorder[item]{before, after} {
		changes := rec.all()
		require.Len(t, changes, 1)
		assert.Equal(t, Error, changes[0].Kind)
		assert.ErrorIs(t, changes[0].Err, bad)
	}
}

func TestStopPreventsCallbacks(t *testing.T) {
	h := newReadyHub(t)
	src := &source{items: keys("a")}
	rec := &recorder[item]{}

	tok := Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, rec.record)
	h.Sync()
	tok.Stop()
	src.set(keys("a", "b"))
	h.Notify(models.ScopeStash)
	h.Sync()

	assert.Len(t, rec.all(), 1)
}

func TestStopInsideCallback(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Close)
	src := &source{items: keys("a")}
	calls := 0

	var tok *Token
	tok = Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, func(Change[item]) {
		calls++
		tok.Stop()
	})
	h.MarkReady(nil)
	h.Sync()
	src.set(keys("b"))
	h.Notify(models.ScopeStash)
	h.Sync()

	assert.Equal(t, 1, calls)
}

func TestStopWaitsForRunningCallback(t *testing.T) {
	h := newReadyHub(t)
	src := &source{items: keys("a")}
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	tok := Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, func(Change[item]) {
		close(entered)
		<-release
		finished.Store(true)
	})
	<-entered

	stopped := make(chan struct{})
	go func() {
		tok.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the callback finished")
	}
	assert.True(t, finished.Load())
}

func TestWatchAfterClose(t *testing.T) {
	h := NewHub()
	h.MarkReady(nil)
	h.Close()

	rec := &recorder[item]{}
	src := &source{}
	Watch(h, []models.Scope{models.ScopeStash}, src.query, itemKey, itemEqual, rec.record)

	changes := rec.all()
	require.Len(t, changes, 1)
	assert.ErrorIs(t, changes[0].Err, ErrClosed)
}

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	return store
}

func productKey(p models.Product) string { return p.ID }

func productEqual(a, b models.Product) bool { return a.Equal(b) }

func TestDeletedProductLeavesStashView(t *testing.T) {
	store := setupStore(t)
	h := newReadyHub(t)
	h.Attach(store)

	a := models.Product{ID: uuid.NewString(), Name: "A", Category: models.CategoryCleanser}
	b := models.Product{ID: uuid.NewString(), Name: "B", Category: models.CategoryActive}
	require.NoError(t, store.AddProduct(a))
	require.NoError(t, store.AddProduct(b))
	require.NoError(t, store.AddToCollection(models.CollectionStash, a.ID))
	require.NoError(t, store.AddToCollection(models.CollectionStash, b.ID))

	rec := &recorder[models.Product]{}
	query := func() ([]models.Product, error) {
		c, err := store.GetCollection(models.CollectionStash)
		return c.Products, err
	}
	tok := Watch(h, []models.Scope{models.ScopeStash, models.ScopeProducts}, query, productKey, productEqual, rec.record)
	defer tok.Stop()
	h.Sync()

	require.NoError(t, store.ApplyProductChange(b.ID, models.NameChanged{Name: "B2"}))
	h.Sync()
	require.NoError(t, store.DeleteProduct(a.ID))
	h.Sync()

	changes := rec.all()
	require.Len(t, changes, 3)
	assert.Equal(t, []int{1}, changes[1].Modifications)
	assert.Equal(t, []int{0}, changes[2].Deletions)
	for _, p := range changes[2].Items {
		assert.NotEqual(t, a.ID, p.ID)
	}
}

func TestObserveProduct(t *testing.T) {
	store := setupStore(t)
	h := newReadyHub(t)
	h.Attach(store)

	p := models.Product{ID: uuid.NewString(), Name: "Serum", Category: models.CategoryActive}
	require.NoError(t, store.AddProduct(p))

	var mu sync.Mutex
	var events []ProductEvent
	ObserveProduct(h, store, p.ID, func(e ProductEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	h.Sync()

	rating := 3
	require.NoError(t, store.ApplyProductChange(p.ID, models.RatingChanged{Rating: &rating}))
	h.Sync()
	require.NoError(t, store.DeleteProduct(p.ID))
	h.Sync()
	require.NoError(t, store.RestoreProduct(p.ID))
	h.Sync()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, ProductChanged, events[0].Kind)
	require.Len(t, events[0].Changes, 1)
	assert.Equal(t, models.FieldRating, events[0].Changes[0].Field())
	assert.Equal(t, ProductDeleted, events[1].Kind)
}
