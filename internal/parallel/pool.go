// Package parallel runs the renderer's prepare work on a fixed set of
// worker goroutines.
//
// Every worker owns a bounded queue. Post spreads tasks round-robin with
// non-blocking pushes and falls back to a blocking push on one queue when
// all of them are full. A worker drains its own queue, then tries to steal
// from the others, and finally blocks on its own queue.
//
// A pool created with zero workers runs every task synchronously inside
// Post.
package parallel

import (
	"sync"
	"sync/atomic"
)

// Task states.
const (
	taskPending int32 = iota
	taskRunning
	taskDone
)

// Task is a one-shot unit of work paired with a completion signal.
type Task struct {
	fn    func()
	state atomic.Int32
	done  chan struct{}
	pool  *WorkerPool
}

// NewTask wraps fn. The task does nothing until it is posted or joined.
func NewTask(fn func()) *Task {
	return &Task{fn: fn, done: make(chan struct{})}
}

// run executes the task if nobody has claimed it yet.
func (t *Task) run() {
	if !t.state.CompareAndSwap(taskPending, taskRunning) {
		return
	}
	if t.fn != nil {
		t.fn()
	}
	t.state.Store(taskDone)
	close(t.done)
	if t.pool != nil {
		t.pool.pending.Done()
	}
}

// Join blocks until the task has finished. A task still waiting in a queue
// is executed on the calling goroutine.
func (t *Task) Join() {
	if t == nil {
		return
	}
	t.run()
	<-t.done
}

// Done reports whether the task has finished.
func (t *Task) Done() bool {
	return t != nil && t.state.Load() == taskDone
}

// WorkerPool is a pool of goroutines executing Tasks.
//
// Thread safety: Post, Sync and Close are meant to be called from a single
// goroutine. Tasks themselves run concurrently.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds per-worker task queues.
	queues []chan *Task

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// pending counts posted tasks that have not finished.
	pending sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// next is the queue the next Post starts probing at.
	next int
}

// NewWorkerPool creates a pool with the given number of workers. Zero or a
// negative count makes every task run synchronously in Post.
func NewWorkerPool(workers int) *WorkerPool {
	workers = max(workers, 0)
	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan *Task, workers),
		done:    make(chan struct{}),
	}
	queueSize := max(workers*4, 8)
	for i := range workers {
		p.queues[i] = make(chan *Task, queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case t := <-own:
			t.run()
			continue
		default:
		}

		if t := p.steal(id); t != nil {
			t.run()
			continue
		}

		select {
		case <-p.done:
			p.drain(own)
			return
		case t := <-own:
			t.run()
		}
	}
}

// drain executes all remaining tasks in a queue.
func (p *WorkerPool) drain(queue chan *Task) {
	for {
		select {
		case t := <-queue:
			t.run()
		default:
			return
		}
	}
}

// steal tries each other worker's queue once.
func (p *WorkerPool) steal(id int) *Task {
	for i := 1; i < p.workers; i++ {
		select {
		case t := <-p.queues[(id+i)%p.workers]:
			return t
		default:
		}
	}
	return nil
}

// Post schedules t. After Close, or with zero workers, t runs immediately.
func (p *WorkerPool) Post(t *Task) {
	if t == nil || t.state.Load() != taskPending {
		return
	}
	if p == nil || p.workers == 0 || !p.running.Load() {
		t.run()
		return
	}
	t.pool = p
	p.pending.Add(1)

	start := p.next
	p.next = (p.next + 1) % p.workers
	for i := range p.workers {
		select {
		case p.queues[(start+i)%p.workers] <- t:
			return
		default:
		}
	}
	p.queues[start] <- t
}

// Sync blocks until every posted task has finished.
func (p *WorkerPool) Sync() {
	if p == nil {
		return
	}
	p.pending.Wait()
}

// Close finishes queued work and stops all workers. Close is safe to call
// multiple times.
func (p *WorkerPool) Close() {
	if p == nil || !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	if p == nil {
		return 0
	}
	return p.workers
}

// IsRunning reports whether the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p != nil && p.running.Load()
}

// QueuedWork returns the approximate number of queued tasks.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}
