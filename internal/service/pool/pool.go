// Package pool provides a bounded set of slots for background work.
package pool

import "context"

// Pool limits how many background deliveries run at once.
type Pool struct {
	sem chan struct{}
}

// New creates a pool with at least one slot
// and at most 128 slots.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	if size > 128 {
		size = 128
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// TryAcquire reserves one slot without blocking.
// It reports false when every slot is taken.
func (p *Pool) TryAcquire() bool {
	select {
	case p.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire reserves one slot, blocking until one is free
// or the context is canceled.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (p *Pool) Release() {
	<-p.sem
}

// Drain waits until no slot is held, by taking every slot and giving them
// back. It returns ctx.Err() if the context ends first.
func (p *Pool) Drain(ctx context.Context) error {
	held := 0
	defer func() {
		for ; held > 0; held-- {
			p.Release()
		}
	}()

	for i := 0; i < cap(p.sem); i++ {
		if err := p.Acquire(ctx); err != nil {
			return err
		}
		held++
	}
	return nil
}
