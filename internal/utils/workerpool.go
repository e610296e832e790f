package utils

import (
	"context"
	"errors"
	"sync"
)

// Task represents a unit of work
type Task[T any] struct {
	Data   T
	Result any
	Err    error
}

// Worker is a function that processes a task
type Worker[T any] func(ctx context.Context, data T) (any, error)

// Pool is a worker pool for concurrent task processing
type Pool[T any] struct {
	workers    int
	taskQueue  chan *Task[T]
	resultChan chan *Task[T]
	wg         sync.WaitGroup
	worker     Worker[T]
	stopOnce   sync.Once
}

// NewPool creates a new worker pool. Fewer than one worker means one.
func NewPool[T any](workers int, worker Worker[T]) *Pool[T] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T]{
		workers:    workers,
		taskQueue:  make(chan *Task[T], workers*2),
		resultChan: make(chan *Task[T], workers*2),
		worker:     worker,
	}
}

// Start starts the worker pool
func (p *Pool[T]) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx)
	}
}

// runWorker runs a single worker
func (p *Pool[T]) runWorker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			result, err := p.worker(ctx, task.Data)
			task.Result = result
			task.Err = err

			select {
			case p.resultChan <- task:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit submits a task to the pool
func (p *Pool[T]) Submit(data T) {
	p.taskQueue <- &Task[T]{Data: data}
}

// Results returns the results channel
func (p *Pool[T]) Results() <-chan *Task[T] {
	return p.resultChan
}

// Stop stops the pool and waits for workers to finish
func (p *Pool[T]) Stop() {
	p.stopOnce.Do(func() {
		close(p.taskQueue)
		p.wg.Wait()
		close(p.resultChan)
	})
}

// Process processes a slice of data items concurrently
func (p *Pool[T]) Process(ctx context.Context, items []T) ([]*Task[T], error) {
	// Handle empty slice case
	if len(items) == 0 {
		return []*Task[T]{}, nil
	}

	p.Start(ctx)

	// Submit all items
	go func() {
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			default:
				p.Submit(item)
			}
		}
		close(p.taskQueue)
	}()

	// Collect results with context awareness
	results := make([]*Task[T], 0, len(items))
	collectDone := false
	for !collectDone {
		select {
		case <-ctx.Done():
			collectDone = true
		case task, ok := <-p.resultChan:
			if !ok {
				collectDone = true
			} else {
				results = append(results, task)
				if len(results) == len(items) {
					collectDone = true
				}
			}
		}
	}

	p.wg.Wait()

	// Drain remaining results to avoid goroutine leak
	go func() {
		for range p.resultChan {
		}
	}()
	close(p.resultChan)

	// Check for context error
	if ctx.Err() != nil {
		return results, ctx.Err()
	}

	return results, nil
}

// JoinTaskErrors joins the errors of all failed tasks, or returns nil
func JoinTaskErrors[T any](tasks []*Task[T]) error {
	var errs []error
	for _, task := range tasks {
		if task.Err != nil {
			errs = append(errs, task.Err)
		}
	}
	return errors.Join(errs...)
}
