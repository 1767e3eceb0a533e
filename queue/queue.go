package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Queue represents a queue where jobs to cross-validate
// datasets can be pushed and pulled. The idea is a worker
// will use the Pull method to obtain a job. It will start
// processing it and will then either complete it or drop
// it halfway.
//
// All its methods have a context.Context as first
// parameter that implementations may use to allow
// timeouts and cancellations on the Queue operations.
type Queue interface {
	// Push takes a job and stores it in the queue or
	// returns an error. The job will count as pending.
	Push(context.Context, *Job) error
	// Pull returns a job, a context that may have a
	// timeout or allow its cancellation and the function
	// to release that context, or an error.
	// The pulled job will be counted as running from
	// then on.
	// If there are no jobs to pull, implementations
	// should not return an error, but 4 nil values.
	// In case of cancellation, workers should still
	// drop the job.
	Pull(context.Context) (*Job, context.Context, context.CancelFunc, error)
	// Drop takes the ID for a job and makes it available
	// for pulling from the Queue again. The dropped job
	// should be counted by implementations as pending
	// again, unless it has been previously completed.
	// Workers should use this to return to the queue
	// jobs they have not completed.
	Drop(context.Context, string) error
	// Complete takes the ID for a job. Implementations
	// should remove the job from the running state.
	Complete(context.Context, string) error
	// Count returns the number of
	// pending and running jobs in the queue
	// or an error
	Count(context.Context) (int, int, error)
	// Stop stops the queue. Implementations should use the
	// call to free resources and cancel pulled contexts.
	Stop(context.Context) error
}

type memQueue struct {
	pendingJobs []*Job
	head        int
	tail        int
	pending     int
	runningJobs map[string]*Job
	lock        *sync.RWMutex
	ctx         context.Context
	ctxCancel   context.CancelFunc
}

// New returns a queue backed only by the process memory.
// Jobs are pulled in the order they were pushed.
func New() Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &memQueue{
		runningJobs: make(map[string]*Job),
		lock:        &sync.RWMutex{},
		ctx:         ctx,
		ctxCancel:   cancel,
	}
}

// WaitFor takes a context, a queue and a polling interval and
// waits for all its jobs to have been processed, that is, for
// the given queue's Count method to return 0, 0, nil.
// It will return a non-nil error if the given context
// times out or is cancelled, or if the queue's Count
// operation returns an error.
func WaitFor(ctx context.Context, q Queue, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		pending, running, err := q.Count(ctx)
		if err != nil {
			return err
		}
		if pending+running == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (mq *memQueue) Push(ctx context.Context, j *Job) error {
	return mq.withLock(ctx, func(ctx context.Context) error {
		if _, ok := mq.runningJobs[j.ID]; ok {
			return fmt.Errorf("pushing job %s: already running", j.ID)
		}
		mq.push(j)
		return nil
	})
}

func (mq *memQueue) Pull(ctx context.Context) (*Job, context.Context, context.CancelFunc, error) {
	var job *Job
	err := mq.withLock(ctx, func(ctx context.Context) error {
		if mq.pending == 0 {
			return nil
		}
		mq.pending--
		job = mq.pendingJobs[mq.head]
		mq.pendingJobs[mq.head] = nil
		mq.head = (mq.head + 1) % len(mq.pendingJobs)
		mq.runningJobs[job.ID] = job
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if job == nil {
		return nil, nil, nil, nil
	}
	jctx, cancel := context.WithCancel(mq.ctx)
	return job, jctx, cancel, nil
}

func (mq *memQueue) Drop(ctx context.Context, id string) error {
	return mq.withLock(ctx, func(ctx context.Context) error {
		j, ok := mq.runningJobs[id]
		if !ok {
			return nil
		}
		delete(mq.runningJobs, id)
		mq.push(j)
		return nil
	})
}

func (mq *memQueue) Complete(ctx context.Context, id string) error {
	return mq.withLock(ctx, func(ctx context.Context) error {
		delete(mq.runningJobs, id)
		return nil
	})
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	var pending, running int
	err := mq.withRLock(ctx, func(ctx context.Context) error {
		pending = mq.pending
		running = len(mq.runningJobs)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return pending, running, nil
}

func (mq *memQueue) Stop(ctx context.Context) error {
	mq.ctxCancel()
	return nil
}

func (mq *memQueue) String() string {
	return fmt.Sprintf("{Queue pending: %d running: %d head:%d tail:%d}", mq.pending, len(mq.runningJobs), mq.head, mq.tail)
}

// push appends j to the ring buffer, growing it when full
func (mq *memQueue) push(j *Job) {
	if mq.pending == len(mq.pendingJobs) {
		mq.reorder()
		mq.pendingJobs = append(mq.pendingJobs, j)
	} else {
		mq.pendingJobs[mq.tail] = j
	}
	mq.pending++
	mq.tail = (mq.head + mq.pending) % len(mq.pendingJobs)
}

func (mq *memQueue) reorder() {
	if mq.head == 0 {
		return
	}
	mq.pendingJobs = append(mq.pendingJobs[mq.head:], mq.pendingJobs[0:mq.head]...)
	mq.head = 0
}

func (mq *memQueue) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	gotLock := make(chan struct{})
	go func() {
		mq.lock.Lock()
		select {
		case <-ctx.Done():
			mq.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mq.lock.Unlock()
	}
	return f(ctx)
}

func (mq *memQueue) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	gotLock := make(chan struct{})
	go func() {
		mq.lock.RLock()
		select {
		case <-ctx.Done():
			mq.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mq.lock.RUnlock()
	}
	return f(ctx)
}
