package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup

	// closing guards jobQueue against sends after Shutdown closed it
	closing sync.RWMutex
	closed  bool

	mu       sync.Mutex
	finished *sync.Cond
	results  []metadata.JobResult
	pending  int
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
		results:    make([]metadata.JobResult, 0, numWorkers),
	}
	js.finished = sync.NewCond(&js.mu)
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.OnStart(job.InputParams)
				if err != nil {
					core.LogError("job '%s' failed: %s", job.Name, err.Error())
				}
				js.mu.Lock()
				js.results = append(js.results, metadata.JobResult{Task: job, Result: result, Err: err})
				js.mu.Unlock()
				js.finished.Broadcast()
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their callbacks
 * are dispatched before returning.
 */
func (js *JobSystem) Shutdown() error {
	js.closing.Lock()
	if js.closed {
		js.closing.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.closing.Unlock()

	js.wg.Wait()
	js.Update()
	return nil
}

/**
 * @brief Dispatches the callbacks of finished jobs on the caller's goroutine.
 * Should happen once an update cycle. Returns how many jobs were dispatched.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	ready := js.results
	js.results = make([]metadata.JobResult, 0, cap(ready))
	js.pending -= len(ready)
	js.mu.Unlock()

	for _, r := range ready {
		dispatch(r)
	}
	return len(ready)
}

// Wait blocks until every submitted job has finished, then dispatches them.
func (js *JobSystem) Wait() {
	js.mu.Lock()
	for len(js.results) < js.pending {
		js.finished.Wait()
	}
	js.mu.Unlock()
	js.Update()
}

// Pending counts submitted jobs whose callbacks have not run yet.
func (js *JobSystem) Pending() int {
	js.mu.Lock()
	defer js.mu.Unlock()
	return js.pending
}

func dispatch(r metadata.JobResult) {
	if r.Err != nil {
		if r.Task.OnFailure != nil {
			r.Task.OnFailure(r.Err)
		}
		return
	}
	if r.Task.OnComplete != nil {
		r.Task.OnComplete(r.Result)
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.OnStart == nil {
		return fmt.Errorf("job '%s' has no OnStart: %w", jt.Name, core.ErrNilResource)
	}
	js.closing.RLock()
	defer js.closing.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.mu.Lock()
	js.pending++
	js.mu.Unlock()
	js.jobQueue <- jt
	return nil
}
