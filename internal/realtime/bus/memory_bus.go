package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/teecraft/storefront/internal/platform/logger"
)

type memoryBus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	subs   map[int]chan AuthEvent
	nextID int
	closed bool
}

// NewMemoryBus delivers events within a single process.
func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:  log.With("service", "MemoryAuthBus"),
		subs: make(map[int]chan AuthEvent),
	}
}

func (b *memoryBus) Publish(ctx context.Context, evt AuthEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("auth bus closed")
	}
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(evt AuthEvent)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("auth bus closed")
	}
	id := b.nextID
	b.nextID++
	ch := make(chan AuthEvent, 64)
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		defer b.unsubscribe(id)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				onMsg(evt)
			}
		}
	}()
	return nil
}

func (b *memoryBus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
