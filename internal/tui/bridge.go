package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Bridge carries messages from hub callbacks onto the program's event
// loop. Post never blocks, so a slow UI cannot stall the hub dispatcher.
type Bridge struct {
	mu      sync.Mutex
	pending []tea.Msg
	wake    chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

// Post queues msg for delivery in order.
func (b *Bridge) Post(msg tea.Msg) {
	b.mu.Lock()
	b.pending = append(b.pending, msg)
	b.mu.Unlock()
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.pending
	b.pending = nil
	return msgs
}

// Run forwards queued messages to send until ctx is done. send is
// usually (*tea.Program).Send.
func (b *Bridge) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}
		for _, msg := range b.drain() {
			send(msg)
		}
	}
}
