// Package pool implements a fixed-size worker pool whose tasks may submit
// further tasks to the same pool.
//
// Completion is tracked with an outstanding-work counter rather than queue
// emptiness: the counter is incremented by Submit and decremented only after a
// task has returned (or panicked). Wait therefore cannot return while a running
// task is still able to submit more work.
package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/idelchi/dirtree/internal/debug"
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("pool is closed")
	// ErrInvalidSize is returned by New for a size below one.
	ErrInvalidSize = errors.New("pool size must be at least 1")
)

// Task is a unit of work.
type Task func()

// Options configures a Pool.
type Options struct {
	// Size is the number of worker goroutines.
	Size int
	// Log receives debug output.
	Log debug.Logger
	// OnPanic is called with the ID of the worker that ran the task and the
	// recovered value when a task panics.
	OnPanic func(worker string, v any)
}

// Counts reports how many tasks went through the pool.
type Counts struct {
	Submitted uint64
	Completed uint64
	Panicked  uint64
}

// Pool runs submitted tasks on a fixed set of goroutines.
// A *Pool is safe for concurrent use and is meant to be shared with the tasks it runs.
type Pool struct {
	mu          sync.Mutex
	queued      *sync.Cond // signalled when a task is queued or the pool closes
	drained     *sync.Cond // broadcast when outstanding reaches zero
	queue       []Task
	outstanding int
	closed      bool
	counts      Counts

	log     debug.Logger
	onPanic func(string, any)
	workers sync.WaitGroup
}

// New starts a pool with opts.Size workers.
func New(opts Options) (*Pool, error) {
	if opts.Size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, opts.Size)
	}

	p := &Pool{
		log:     opts.Log,
		onPanic: opts.OnPanic,
	}
	p.queued = sync.NewCond(&p.mu)
	p.drained = sync.NewCond(&p.mu)

	p.workers.Add(opts.Size)

	for range opts.Size {
		id := uuid.New().String()
		p.log.Printf("starting worker %s", id)

		go p.work(id)
	}

	return p, nil
}

// Submit queues task. It never blocks.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	p.outstanding++
	p.counts.Submitted++
	p.queue = append(p.queue, task)
	p.queued.Signal()

	return nil
}

// Wait blocks until every submitted task, including tasks submitted by
// other tasks, has finished.
func (p *Pool) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.outstanding > 0 {
		p.drained.Wait()
	}
}

// Close waits for outstanding work, then stops and joins the workers.
// Calling Close more than once is a no-op.
func (p *Pool) Close() {
	p.Wait()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return
	}

	p.closed = true
	p.queued.Broadcast()
	p.mu.Unlock()

	p.workers.Wait()
}

// Counts returns a snapshot of the task counters.
func (p *Pool) Counts() Counts {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.counts
}

func (p *Pool) work(id string) {
	defer p.workers.Done()

	for {
		task, ok := p.next()
		if !ok {
			p.log.Printf("worker %s stopped", id)

			return
		}

		p.run(id, task)
	}
}

// next dequeues a task, parking while the queue is empty.
// It returns false once the pool is closed and the queue is empty.
func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 {
		if p.closed {
			return nil, false
		}

		p.queued.Wait()
	}

	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]

	return task, true
}

func (p *Pool) run(id string, task Task) {
	panicked := true

	// done runs even if the panic handler itself panics.
	defer func() { p.done(panicked) }()

	defer func() {
		if !panicked {
			return
		}

		v := recover()
		p.log.Printf("worker %s: task panicked: %v", id, v)

		if p.onPanic != nil {
			p.onPanic(id, v)
		}
	}()

	task()

	panicked = false
}

func (p *Pool) done(panicked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.outstanding--
	p.counts.Completed++

	if panicked {
		p.counts.Panicked++
	}

	if p.outstanding == 0 {
		p.drained.Broadcast()
	}
}
