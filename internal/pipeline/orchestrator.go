package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Orchestrator runs queued build jobs for the build service.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	runner  *Runner
	log     *slog.Logger
	workers int
	maxQ    int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the job queue. Call Start to run jobs.
func NewOrchestrator(runner *Runner, workers, maxQueue int, ttl time.Duration, log *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		jobs:    NewJobStore(ttl),
		queue:   make(chan *Job, maxQueue),
		runner:  runner,
		log:     log,
		workers: workers,
		maxQ:    maxQueue,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID)
	job.SetStatus(StatusRunning, "building")
	log.Info("build job started", "inputs", len(job.Request.Inputs))

	summaries, err := o.runner.Build(ctx, job.Request)
	job.Finish(summaries, err)

	snap := job.Snapshot()
	log.Info("build job finished", "status", snap.Status, "errors", len(snap.Errors))
}

// Stop cancels running builds and waits for the workers. Jobs still queued
// are marked failed. Submit must not be called after Stop.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
	for job := range o.queue {
		job.SetStatus(StatusFailed, "service stopped")
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue full")
		return fmt.Errorf("job queue is full (%d)", o.maxQ)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling per-file conversion statistics.
func (o *Orchestrator) Stats() *ConversionStats {
	return o.runner.Builder().Stats()
}
