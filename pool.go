package nb2pdf

import (
	"runtime"
	"sync"
)

// Pool size bounds. Each Converter may own a browser page, so the pool
// is capped well below typical core counts.
const (
	MinPoolSize = 1
	MaxPoolSize = 8
)

// ResolvePoolSize picks a pool size from available CPUs: half the
// effective GOMAXPROCS, clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(requested int) int {
	if requested > 0 {
		if requested > MaxPoolSize {
			return MaxPoolSize
		}
		return requested
	}

	size := runtime.GOMAXPROCS(0) / 2
	if size < MinPoolSize {
		size = MinPoolSize
	}
	if size > MaxPoolSize {
		size = MaxPoolSize
	}
	return size
}

// ConverterPool manages a fixed number of Converters for parallel
// conversion. Converters are created lazily on first acquisition and
// reused across releases.
type ConverterPool struct {
	semaphore chan struct{}
	opts      []Option

	mu   sync.Mutex
	idle []*Converter
	all  []*Converter
}

// NewConverterPool creates a pool of at most size converters, each
// built with the given options.
func NewConverterPool(size int, opts ...Option) *ConverterPool {
	size = ResolvePoolSize(size)
	return &ConverterPool{
		semaphore: make(chan struct{}, size),
		opts:      opts,
	}
}

// Acquire blocks until a converter slot is free, then returns an idle
// converter or creates a new one.
func (p *ConverterPool) Acquire() (*Converter, error) {
	p.semaphore <- struct{}{}

	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, err := NewConverter(p.opts...)
	if err != nil {
		<-p.semaphore
		return nil, err
	}

	p.mu.Lock()
	p.all = append(p.all, c)
	p.mu.Unlock()
	return c, nil
}

// Release returns a converter to the pool.
func (p *ConverterPool) Release(c *Converter) {
	if c == nil {
		<-p.semaphore
		return
	}
	p.mu.Lock()
	p.idle = append(p.idle, c)
	p.mu.Unlock()
	<-p.semaphore
}

// CloseAll closes every converter ever created by the pool. Call after
// all conversions are released.
func (p *ConverterPool) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, c := range p.all {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.all = nil
	p.idle = nil
	return firstErr
}
