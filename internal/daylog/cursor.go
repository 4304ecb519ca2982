package daylog

import (
	"sync"
	"time"
)

// Cursor holds the date every screen is looking at. Set is expected from
// one goroutine; observers run synchronously on that goroutine.
type Cursor struct {
	mu        sync.RWMutex
	date      time.Time
	observers map[int]func(time.Time)
	nextID    int
}

func NewCursor(date time.Time) *Cursor {
	return &Cursor{
		date:      date,
		observers: make(map[int]func(time.Time)),
	}
}

func (c *Cursor) Get() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.date
}

// Set updates the date and notifies observers when it changed.
func (c *Cursor) Set(date time.Time) {
	c.mu.Lock()
	if c.date.Equal(date) {
		c.mu.Unlock()
		return
	}
	c.date = date
	fns := make([]func(time.Time), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(date)
	}
}

// Step moves the cursor n days. The cursor is unchanged on error.
func (c *Cursor) Step(r *Resolver, n int) error {
	next, err := r.ChangeDay(c.Get(), n)
	if err != nil {
		return err
	}
	c.Set(next)
	return nil
}

// Observe registers fn and returns a function that removes it.
func (c *Cursor) Observe(fn func(time.Time)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}
