// Package worker bounds how many report generations run at once. Uploads
// beyond the queue capacity are rejected instead of piling up behind the
// LLM API.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrPoolBusy is returned when the generation queue is full.
var ErrPoolBusy = errors.New("worker: generation queue is full")

// Task produces the report text for one upload batch.
type Task func(ctx context.Context) string

type job struct {
	ctx    context.Context
	task   Task
	result chan string
}

// Pool runs a fixed number of generation workers over a bounded queue.
type Pool struct {
	jobs chan job
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		jobs: make(chan job, queueSize),
		stop: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	return p
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			if err := j.ctx.Err(); err != nil {
				log.Printf("worker-%d: dropping job, caller gone: %v", id, err)
				close(j.result)
				continue
			}
			j.result <- j.task(j.ctx)
		case <-p.stop:
			return
		}
	}
}

// Submit enqueues a task and waits for its result. It fails fast with
// ErrPoolBusy when the queue is full, and returns the context error if the
// caller gives up while waiting.
func (p *Pool) Submit(ctx context.Context, task Task) (string, error) {
	j := job{ctx: ctx, task: task, result: make(chan string, 1)}
	select {
	case p.jobs <- j:
	default:
		return "", ErrPoolBusy
	}
	select {
	case text, ok := <-j.result:
		if !ok {
			return "", ctx.Err()
		}
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the workers after their current jobs finish.
func (p *Pool) Shutdown() {
	close(p.stop)
	p.wg.Wait()
}
