package workerpool

import (
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	// ErrPoolClosed is returned when submitting to a released pool
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config holds worker pool settings
type Config struct {
	Workers int `mapstructure:"workers"` // max concurrent workers
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() *Config {
	return &Config{Workers: 16}
}

// Pool is a bounded worker pool for CPU- and network-heavy pipeline stages.
// Submissions block when every worker is busy, which caps the number of
// concurrent image analyses regardless of request concurrency.
type Pool struct {
	inner  *ants.Pool
	logger *zap.Logger
}

// New creates a worker pool with the given configuration
func New(cfg *Config, logger *zap.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}

	inner, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}

	return &Pool{inner: inner, logger: logger}, nil
}

// Submit schedules a task, blocking until a worker is free
func (p *Pool) Submit(task func()) error {
	if p.inner.IsClosed() {
		return ErrPoolClosed
	}
	return p.inner.Submit(task)
}

// RunAll executes every task on the pool and waits for all of them to finish.
// If a task cannot be scheduled it runs inline so the batch always completes.
func (p *Pool) RunAll(tasks ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for _, task := range tasks {
		task := task
		wrapped := func() {
			defer wg.Done()
			task()
		}
		if err := p.Submit(wrapped); err != nil {
			if p.logger != nil {
				p.logger.Warn("worker pool submit failed, running task inline", zap.Error(err))
			}
			wrapped()
		}
	}

	wg.Wait()
}

// Running returns the number of busy workers
func (p *Pool) Running() int {
	return p.inner.Running()
}

// Release shuts the pool down
func (p *Pool) Release() {
	p.inner.Release()
}
