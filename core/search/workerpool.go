package search

import (
	"runtime"
	"sync"
)

// WorkerPool runs jobs across a fixed number of goroutines and collects
// their results. Results arrive in completion order.
type WorkerPool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// NewWorkerPool creates a pool for numJobs jobs. numWorkers <= 0 means
// GOMAXPROCS; the pool never starts more workers than jobs.
func NewWorkerPool[Job any, Result any](numWorkers, numJobs int) *WorkerPool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}

	return &WorkerPool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// Start launches the workers.
func (p *WorkerPool[Job, Result]) Start(workerFn func(Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.results <- workerFn(job)
			}
		}()
	}
}

// Submit queues a job.
func (p *WorkerPool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close stops accepting jobs. The results channel closes once every
// worker has finished.
func (p *WorkerPool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the results channel.
func (p *WorkerPool[Job, Result]) Results() <-chan Result {
	return p.results
}

// RunAll runs fn over jobs on a pool of numWorkers and returns every
// result, in completion order.
func RunAll[Job any, Result any](numWorkers int, jobs []Job, fn func(Job) Result) []Result {
	if len(jobs) == 0 {
		return nil
	}
	pool := NewWorkerPool[Job, Result](numWorkers, len(jobs))
	pool.Start(fn)
	for _, job := range jobs {
		pool.Submit(job)
	}
	pool.Close()

	out := make([]Result, 0, len(jobs))
	for r := range pool.Results() {
		out = append(out, r)
	}
	return out
}
