// Package dispatch runs best-effort side effects (emails, order events) off
// the request path. Jobs are never retried and their failures never reach the
// caller that submitted them.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/metrics"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Dispatcher struct {
	jobs       chan Job
	workers    int
	jobTimeout time.Duration

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

func New(workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		jobs:       make(chan Job, queueSize),
		workers:    workers,
		jobTimeout: 30 * time.Second,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Submit enqueues job without blocking. It reports false when the queue is
// full or the dispatcher is shutting down; the job is dropped in that case.
func (d *Dispatcher) Submit(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logrus.WithField("job", job.Name).Warn("Dispatcher stopped, dropping job")
		metrics.DispatchJobs.WithLabelValues(job.Name, "dropped").Inc()
		return false
	}

	select {
	case d.jobs <- job:
		return true
	default:
		logrus.WithField("job", job.Name).Warn("Dispatch queue full, dropping job")
		metrics.DispatchJobs.WithLabelValues(job.Name, "dropped").Inc()
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("job", job.Name).Errorf("Dispatch job panicked: %v", r)
			metrics.DispatchJobs.WithLabelValues(job.Name, "failed").Inc()
		}
	}()

	if err := job.Run(ctx); err != nil {
		logrus.WithField("job", job.Name).WithError(err).Error("Dispatch job failed")
		metrics.DispatchJobs.WithLabelValues(job.Name, "failed").Inc()
		return
	}
	metrics.DispatchJobs.WithLabelValues(job.Name, "succeeded").Inc()
}
