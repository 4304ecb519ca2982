// Package notify turns store writes into per-subscription change sets.
package notify

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/skinlog/internal/logger"
	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

var ErrClosed = errors.New("notification hub closed")

type Kind int

const (
	// Initial carries the full result and is always delivered first.
	Initial Kind = iota
	// Update carries the new result plus the diff from the previous one.
	Update
	// Error ends the subscription.
	Error
)

func (k Kind) String() string {
	switch k {
	case Initial:
		return "initial"
	case Update:
		return "update"
	case Error:
		return "error"
	}
	return "unknown"
}

type Change[T any] struct {
	Kind  Kind
	Items []T
	Diff
	Err error
}

type subscription struct {
	id     uint64
	scopes map[models.Scope]bool

	// refresh runs on the dispatcher. It returns true when the
	// subscription has finished and should be dropped.
	refresh func() bool
	fail    func(error)

	mu      sync.Mutex    // held while a callback runs
	caller  atomic.Uint64 // goroutine running the callback, 0 when idle
	stopped atomic.Bool
	queued  atomic.Bool
}

func (s *subscription) matches(scopes []models.Scope) bool {
	for _, sc := range scopes {
		if s.scopes[sc] {
			return true
		}
	}
	return false
}

// Hub fans store changes out to subscriptions. All queries and callbacks
// run on a single dispatcher goroutine, in order.
type Hub struct {
	mu       sync.Mutex
	subs     map[uint64]*subscription
	nextID   uint64
	ready    bool
	readyErr error
	closed   bool

	queueMu sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}

	logger *log.Logger
}

func NewHub() *Hub {
	h := &Hub{
		subs:   make(map[uint64]*subscription),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger.With("notify"),
	}
	go h.dispatch()
	return h
}

func (h *Hub) dispatch() {
	for {
		select {
		case <-h.done:
			return
		case <-h.wake:
		}
		for {
			h.queueMu.Lock()
			if len(h.queue) == 0 {
				h.queueMu.Unlock()
				break
			}
			task := h.queue[0]
			h.queue = h.queue[1:]
			h.queueMu.Unlock()
			task()
		}
	}
}

// goroutineID parses the current goroutine's id from its stack header,
// "goroutine 18 [running]:".
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseUint(string(buf), 10, 64)
	return id
}

func (h *Hub) enqueue(task func()) {
	h.queueMu.Lock()
	h.queue = append(h.queue, task)
	h.queueMu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Sync blocks until every task queued before the call has run.
func (h *Hub) Sync() {
	done := make(chan struct{})
	h.enqueue(func() { close(done) })
	select {
	case <-done:
	case <-h.done:
	}
}

// Close stops the dispatcher. Pending tasks are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

// Attach routes the store's write hook into the hub.
func (h *Hub) Attach(store storage.Provider) {
	store.OnChange(h.Notify)
}

// Follow forwards changes from an external source until ctx is done.
func (h *Hub) Follow(ctx context.Context, src storage.ChangeSource) {
	go func() {
		if err := src.Watch(ctx, h.Notify); err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Warn("change source stopped", "error", err)
		}
	}()
}

// MarkReady opens the gate. With a nil error every subscription gets its
// Initial; otherwise every subscription gets the error and is dropped.
// Only the first call has any effect.
func (h *Hub) MarkReady(err error) {
	h.mu.Lock()
	if h.ready {
		h.mu.Unlock()
		return
	}
	h.ready = true
	h.readyErr = err
	subs := make([]*subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	if err != nil {
		h.subs = make(map[uint64]*subscription)
	}
	h.mu.Unlock()

	for _, s := range subs {
		if err != nil {
			h.scheduleFail(s, err)
		} else {
			h.schedule(s)
		}
	}
}

// Notify schedules a refresh of every subscription on any of scopes.
func (h *Hub) Notify(scopes ...models.Scope) {
	h.mu.Lock()
	if !h.ready || h.readyErr != nil || h.closed {
		h.mu.Unlock()
		return
	}
	var matched []*subscription
	for _, s := range h.subs {
		if s.matches(scopes) {
			matched = append(matched, s)
		}
	}
	h.mu.Unlock()

	for _, s := range matched {
		h.schedule(s)
	}
}

func (h *Hub) schedule(s *subscription) {
	if s.queued.Swap(true) {
		return
	}
	h.enqueue(func() {
		s.queued.Store(false)
		if s.stopped.Load() {
			return
		}
		if s.refresh() {
			h.remove(s)
		}
	})
}

func (h *Hub) scheduleFail(s *subscription, err error) {
	h.enqueue(func() {
		if s.stopped.Load() {
			return
		}
		s.fail(err)
		s.stopped.Store(true)
	})
}

// deliver runs fn for s unless s was stopped.
func (h *Hub) deliver(s *subscription, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped.Load() {
		return
	}
	s.caller.Store(goroutineID())
	defer s.caller.Store(0)
	fn()
}

func (h *Hub) register(s *subscription) *Token {
	h.mu.Lock()
	s.id = h.nextID
	h.nextID++
	ready, readyErr, closed := h.ready, h.readyErr, h.closed
	if readyErr == nil && !closed {
		h.subs[s.id] = s
	}
	h.mu.Unlock()

	switch {
	case closed:
		s.fail(ErrClosed)
		s.stopped.Store(true)
	case readyErr != nil:
		h.scheduleFail(s, readyErr)
	case ready:
		h.schedule(s)
	}
	return &Token{hub: h, sub: s}
}

func (h *Hub) remove(s *subscription) {
	s.stopped.Store(true)
	h.mu.Lock()
	delete(h.subs, s.id)
	h.mu.Unlock()
}

// Token cancels a subscription.
type Token struct {
	hub *Hub
	sub *subscription
}

// Stop unsubscribes. Once Stop returns no further callback starts, and any
// callback already running on another goroutine has finished. Stop may be
// called from inside the subscription's own callback.
func (t *Token) Stop() {
	if t == nil || t.sub == nil {
		return
	}
	if t.sub.caller.Load() != goroutineID() {
		t.sub.mu.Lock()
		t.sub.stopped.Store(true)
		t.sub.mu.Unlock()
	}
	t.hub.remove(t.sub)
}

// Watch subscribes fn to the result of query over scopes. Results are
// matched across refreshes by key; equal reports whether a matched item is
// unchanged and may be nil when only membership matters.
func Watch[T any](h *Hub, scopes []models.Scope, query func() ([]T, error), key func(T) string, equal func(a, b T) bool, fn func(Change[T])) *Token {
	var prev []T
	initialized := false

	s := &subscription{scopes: make(map[models.Scope]bool, len(scopes))}
	for _, sc := range scopes {
		s.scopes[sc] = true
	}
	s.fail = func(err error) {
		h.deliver(s, func() { fn(Change[T]{Kind: Error, Err: err}) })
	}
	s.refresh = func() bool {
		items, err := query()
		if err != nil {
			h.logger.Debug("subscription query failed", "error", err)
			s.fail(err)
			return true
		}
		if !initialized {
			initialized = true
			prev = items
			h.deliver(s, func() { fn(Change[T]{Kind: Initial, Items: items}) })
			return false
		}
		d := diffLists(prev, items, key, equal)
		prev = items
		if d.Empty() {
			return false
		}
		h.deliver(s, func() { fn(Change[T]{Kind: Update, Items: items, Diff: d}) })
		return false
	}
	return h.register(s)
}
