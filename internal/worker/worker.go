// Package worker provides a small fixed-size pool that drains queued tasks
// until stopped.
package worker

import (
	"context"
	"sync"
)

type ProcessFunc[T any] func(ctx context.Context, task T)

type Pool[T any] struct {
	numWorkers int
	tasks      chan T
	processor  ProcessFunc[T]
	wg         sync.WaitGroup
}

func NewPool[T any](numWorkers, bufferSize int, processor ProcessFunc[T]) *Pool[T] {
	return &Pool[T]{
		numWorkers: numWorkers,
		tasks:      make(chan T, bufferSize),
		processor:  processor,
	}
}

func (p *Pool[T]) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.processor(ctx, task)
		}
	}
}

// Submit queues a task. It blocks when the buffer is full.
func (p *Pool[T]) Submit(task T) {
	p.tasks <- task
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (p *Pool[T]) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
