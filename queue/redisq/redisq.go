/*
Package redisq provides a queue.Queue backed by redis, so that workers on
several processes or machines can share the jobs of a batch run.
*/
package redisq

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hafniz/mlcore/queue"
	redis "gopkg.in/redis.v5"
)

/*
EncodeDecoder is an interface for objects
that allow encoding jobs as slices of bytes and decoding
them back to jobs. It is used to serialize jobs into a
representation to store on redis. The encoder of package
queue/json implements it.
*/
type EncodeDecoder interface {
	Encode(context.Context, *queue.Job) ([]byte, error)
	Decode(context.Context, []byte) (*queue.Job, error)
}

type redisQ struct {
	id        string
	rc        *redis.Client
	allJobCtx context.Context
	allJobCF  context.CancelFunc
	jobMaxRun time.Duration
	lockTTL   time.Duration
	EncodeDecoder
}

const lockReleaseScript = `
if redis.call("GET",KEYS[1]) == ARGV[1] then
    return redis.call("DEL",KEYS[1])
else
    return 0
end
`
const lockAttempts = 5
const failToLockSleep = 10 * time.Millisecond

/*
New returns a queue.Queue that uses the given redis client as a
backend. It uses the given id to prefix the keys used on the
redis client to keep the queue's data, which are the following:
  * id:pending is the key to a set with the key prefixes of the pending jobs
  * id:running is the key to a set with the key prefixes of the running jobs
  * id:job:job_id:data is the key to a string that holds the job data.
  Jobs are encoded and decoded using the given EncodeDecoder.
  * id:job:job_id:lock implements a lock for exclusive management of a
  job on the queue. It is set to expire in the given lockTTL duration
  * id:job:job_id:running marks the job as running, and expires in the
  given jobMaxRun duration. Once the key expires a cleanup process will
  understand the job was dropped by a failing worker and make it pending
  again. Setting jobMaxRun to the zero value prevents the key from
  expiring and the cleanup process from taking place at all.

The returned queue is safe for concurrent use by multiple goroutines.
*/
func New(id string, rc *redis.Client, jobMaxRun, lockTTL time.Duration, encDec EncodeDecoder) queue.Queue {
	ctx, cf := context.WithCancel(context.Background())
	rq := &redisQ{
		id:            id,
		rc:            rc,
		allJobCtx:     ctx,
		allJobCF:      cf,
		jobMaxRun:     jobMaxRun,
		lockTTL:       lockTTL,
		EncodeDecoder: encDec,
	}
	if jobMaxRun > 0 {
		go rq.dropTimedOutJobs()
	}
	return rq
}

// Push takes a job and stores it in the queue or
// returns an error. The job will count as pending.
func (rq *redisQ) Push(ctx context.Context, j *queue.Job) error {
	data, err := rq.Encode(ctx, j)
	if err != nil {
		return fmt.Errorf("pushing job %s to queue: %w", j.ID, err)
	}
	jKeyPrefix := rq.jobKeyPrefix(j.ID)
	jDataKey := fmt.Sprintf("%s:data", jKeyPrefix)
	ok, err := rq.rc.SetNX(jDataKey, string(data), time.Duration(0)).Result()
	if err != nil {
		return fmt.Errorf("pushing job %s to queue: %w", j.ID, err)
	}
	if !ok {
		return fmt.Errorf("pushing job %s to queue: key %q already exists", j.ID, jDataKey)
	}
	added, err := rq.rc.SAdd(rq.pendingSetKey(), jKeyPrefix).Result()
	if err != nil || added != 1 {
		rq.rc.Del(jDataKey)
		if err == nil {
			err = fmt.Errorf("%q already in pending set %q", jKeyPrefix, rq.pendingSetKey())
		}
		return fmt.Errorf("pushing job %s to queue %s: %w", j.ID, rq.id, err)
	}
	return nil
}

// Pull returns a pending job and a context that will be
// done when the job has been running for longer than the
// queue's jobMaxRun or the queue is stopped.
// If there are no jobs to pull, it returns 4 nil values.
func (rq *redisQ) Pull(ctx context.Context) (*queue.Job, context.Context, context.CancelFunc, error) {
	iter := rq.rc.SScan(rq.pendingSetKey(), 0, "", 0).Iterator()
	for iter.Next() {
		var jctx context.Context
		var jcf context.CancelFunc
		if rq.jobMaxRun == 0 {
			jctx, jcf = context.WithCancel(rq.allJobCtx)
		} else {
			jctx, jcf = context.WithTimeout(rq.allJobCtx, rq.jobMaxRun)
		}
		jobKeyPrefix := iter.Val()
		err := rq.withLockFor(ctx, jobKeyPrefix, 0, func(ctx context.Context) error {
			ok, err := rq.rc.SetNX(fmt.Sprintf("%s:running", jobKeyPrefix), "true", rq.jobMaxRun).Result()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("job %q already running", jobKeyPrefix)
			}
			_, err = rq.rc.SMove(rq.pendingSetKey(), rq.runningSetKey(), jobKeyPrefix).Result()
			if err != nil {
				if ctx.Err() == nil {
					rq.rc.Del(fmt.Sprintf("%s:running", jobKeyPrefix))
				}
				return fmt.Errorf("moving %q from %q set to %q set: %w", jobKeyPrefix, rq.pendingSetKey(), rq.runningSetKey(), err)
			}
			return nil
		})
		if err != nil {
			jcf()
			continue
		}
		jID := jobID(jobKeyPrefix)
		data, err := rq.rc.Get(fmt.Sprintf("%s:data", jobKeyPrefix)).Result()
		if err != nil {
			jcf()
			rq.Drop(ctx, jID)
			continue
		}
		j, err := rq.Decode(ctx, []byte(data))
		if err != nil {
			jcf()
			rq.Drop(ctx, jID)
			continue
		}
		return j, jctx, jcf, nil
	}
	if err := iter.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterating over pending jobs in %q set: %w", rq.pendingSetKey(), err)
	}
	return nil, nil, nil, nil
}

// Drop takes the ID for a running job and makes it
// pending again. Completed jobs are not affected.
func (rq *redisQ) Drop(ctx context.Context, id string) error {
	jKeyPrefix := rq.jobKeyPrefix(id)
	err := rq.withLockFor(ctx, jKeyPrefix, lockAttempts, func(ctx context.Context) error {
		ok, err := rq.rc.SMove(rq.runningSetKey(), rq.pendingSetKey(), jKeyPrefix).Result()
		if err != nil {
			return fmt.Errorf("moving %q from %q to %q: %w", jKeyPrefix, rq.runningSetKey(), rq.pendingSetKey(), err)
		}
		if !ok {
			return nil
		}
		return rq.unmarkRunning(jKeyPrefix)
	})
	if err != nil {
		return fmt.Errorf("dropping %s: %w", id, err)
	}
	return nil
}

// Complete takes the ID for a job and removes it and
// its data from the queue.
func (rq *redisQ) Complete(ctx context.Context, id string) error {
	jKeyPrefix := rq.jobKeyPrefix(id)
	err := rq.withLockFor(ctx, jKeyPrefix, lockAttempts, func(ctx context.Context) error {
		count, err := rq.rc.SRem(rq.runningSetKey(), jKeyPrefix).Result()
		if err != nil {
			return fmt.Errorf("removing %q from %q: %w", jKeyPrefix, rq.runningSetKey(), err)
		}
		if count == 0 {
			return nil
		}
		if err = rq.unmarkRunning(jKeyPrefix); err != nil {
			return err
		}
		dataKey := fmt.Sprintf("%s:data", jKeyPrefix)
		if _, err = rq.rc.Del(dataKey).Result(); err != nil {
			return fmt.Errorf("removing %q: %w", dataKey, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("completing %s: %w", id, err)
	}
	return nil
}

// Count returns the number of
// pending and running jobs in the queue
// or an error
func (rq *redisQ) Count(context.Context) (int, int, error) {
	// count pending and running sets at the same time to prevent a job
	// moving between them from triggering a false "work finished" event
	cmd := redis.NewSliceCmd(
		"EVAL",
		`return {redis.call("SCARD", KEYS[1]), redis.call("SCARD", KEYS[2])}`,
		2,
		rq.pendingSetKey(),
		rq.runningSetKey(),
	)
	err := rq.rc.Process(cmd)
	if err != nil {
		return 0, 0, fmt.Errorf("counting jobs: %w", err)
	}
	v, err := cmd.Result()
	if err != nil {
		return 0, 0, fmt.Errorf("counting jobs: %w", err)
	}
	return parseCounts(v)
}

// Stop cancels the contexts of all pulled jobs and
// the cleanup of timed out jobs.
func (rq *redisQ) Stop(context.Context) error {
	rq.allJobCF()
	return nil
}

func parseCounts(v []interface{}) (int, int, error) {
	if len(v) != 2 {
		return 0, 0, fmt.Errorf("counting jobs: redis returned %d counts instead of 2", len(v))
	}
	p, ok := v[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("counting jobs: cannot extract integer pending jobs count from %v (%T)", v[0], v[0])
	}
	r, ok := v[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("counting jobs: cannot extract integer running jobs count from %v (%T)", v[1], v[1])
	}
	return int(p), int(r), nil
}

func (rq *redisQ) unmarkRunning(jKeyPrefix string) error {
	runningMarkKey := fmt.Sprintf("%s:running", jKeyPrefix)
	if _, err := rq.rc.Del(runningMarkKey).Result(); err != nil {
		return fmt.Errorf("removing %q: %w", runningMarkKey, err)
	}
	return nil
}

func (rq *redisQ) jobKeyPrefix(jobID string) string {
	return fmt.Sprintf("%s:job:%s", rq.id, jobID)
}

// jobID returns the ID of the job with the given key prefix
func jobID(jobKeyPrefix string) string {
	tokens := strings.Split(jobKeyPrefix, ":")
	return tokens[len(tokens)-1]
}

func (rq *redisQ) pendingSetKey() string {
	return fmt.Sprintf("%s:pending", rq.id)
}

func (rq *redisQ) runningSetKey() string {
	return fmt.Sprintf("%s:running", rq.id)
}

func (rq *redisQ) withLockFor(ctx context.Context, jobKeyPrefix string, additionalAttempts int, f func(ctx context.Context) error) error {
	jLockKey := fmt.Sprintf("%s:lock", jobKeyPrefix)
	jLockValue := randString(20)
	lctx, cf := context.WithTimeout(ctx, rq.lockTTL)
	defer cf()
	ok, err := rq.rc.SetNX(jLockKey, jLockValue, rq.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("could not acquire lock: %w", err)
	}
	if !ok {
		if additionalAttempts > 0 {
			cf()
			d, _ := rq.rc.TTL(jLockKey).Result()
			time.Sleep(d + time.Duration(rand.Int63n(int64(failToLockSleep)*int64(additionalAttempts))))
			return rq.withLockFor(ctx, jobKeyPrefix, additionalAttempts-1, f)
		}
		return fmt.Errorf("could not acquire lock: already taken")
	}
	defer func() {
		rq.rc.Eval(lockReleaseScript, []string{jLockKey}, jLockValue)
	}()
	return f(lctx)
}

func (rq *redisQ) dropTimedOutJobs() {
	ticker := time.NewTicker(rq.jobMaxRun / 2)
	defer ticker.Stop()
	for {
		iter := rq.rc.SScan(rq.runningSetKey(), 0, "", 0).Iterator()
		for iter.Next() {
			var timedOut bool
			jKeyPrefix := iter.Val()
			rq.withLockFor(rq.allJobCtx, jKeyPrefix, 0, func(ctx context.Context) error {
				exists, err := rq.rc.Exists(fmt.Sprintf("%s:running", jKeyPrefix)).Result()
				if err != nil {
					return err
				}
				timedOut = !exists
				return nil
			})
			if timedOut {
				rq.Drop(rq.allJobCtx, jobID(jKeyPrefix))
			}
			if rq.allJobCtx.Err() != nil {
				return
			}
		}
		select {
		case <-rq.allJobCtx.Done():
			return
		case <-ticker.C:
		}
	}
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
