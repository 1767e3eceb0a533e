/*
Package batch cross-validates the decision tree classifier over many
datasets. Datasets are pushed as jobs to a queue.Queue and processed by a
pool of workers. Every dataset gets a results file with the label
distributions predicted for its samples on every cross-validation
repetition.

A dataset that cannot be processed is logged and skipped, and the run goes
on with the rest.
*/
package batch

import (
	"context"
	encsv "encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hafniz/mlcore"
	"github.com/hafniz/mlcore/crossval"
	"github.com/hafniz/mlcore/dataset"
	"github.com/hafniz/mlcore/dataset/csv"
	"github.com/hafniz/mlcore/feature"
	"github.com/hafniz/mlcore/queue"
	"github.com/hafniz/mlcore/tree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Runner processes the jobs of a batch run
type Runner struct {
	features    []feature.Feature
	label       feature.Feature
	folds       int
	repetitions int
	opts        []tree.Option
	logger      logrus.FieldLogger
	metrics     *Metrics
}

/*
NewRunner takes the candidate features, the label feature, the config of the
run, a logger and the metrics to record and returns a Runner. Options are
passed to every tree grown.
*/
func NewRunner(features []feature.Feature, label feature.Feature, cfg *Config, logger logrus.FieldLogger, metrics *Metrics, opts ...tree.Option) *Runner {
	return &Runner{
		features:    features,
		label:       label,
		folds:       cfg.Folds,
		repetitions: cfg.Repetitions,
		opts:        opts,
		logger:      logger,
		metrics:     metrics,
	}
}

/*
Enqueue pushes to the queue a job for every dataset in the config, to write
its results to <output_dir>/<name>_results.csv, where name is the dataset
file name without extension. The i-th job is seeded with the config seed
plus i. It returns the pushed jobs.
*/
func Enqueue(ctx context.Context, q queue.Queue, cfg *Config) ([]*queue.Job, error) {
	jobs := make([]*queue.Job, 0, len(cfg.Datasets))
	for i, path := range cfg.Datasets {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		j := queue.NewJob(path, filepath.Join(cfg.OutputDir, name+"_results.csv"), cfg.Seed+int64(i))
		if err := q.Push(ctx, j); err != nil {
			return nil, fmt.Errorf("enqueuing %s: %w", path, err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

/*
Run starts the given number of workers on the queue and waits for them to
finish, which they do once the queue has no pending or running jobs. See
Work.
*/
func (r *Runner) Run(ctx context.Context, q queue.Queue, workers int, emptyQueueSleep time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			return r.Work(gctx, q, emptyQueueSleep, r.logger.WithField("worker", worker))
		})
	}
	return g.Wait()
}

// Work takes a context, a queue, a sleep duration and a logger
// and works on the jobs of the queue. This means the following:
//   * pulls a job from the queue
//   * cross-validates the job's dataset and writes its results
//   * marks the job as completed on the queue, even if processing
//     it failed, after logging the failure
//
// If at some point no job can be pulled from the queue and
// the sum of jobs running and pending on the queue is 0, the
// worker ends returning nil. If no job can be pulled but the
// sum is not 0, then the worker will sleep for the given
// emptyQueueSleep duration and then retry.
//
// Work will return a non-nil error if the given context
// times out or is cancelled, in which case the job being
// processed is dropped, or if an operation with the given
// queue returns a non-nil error.
func (r *Runner) Work(ctx context.Context, q queue.Queue, emptyQueueSleep time.Duration, logger logrus.FieldLogger) error {
	for {
		job, jctx, jcf, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if job == nil {
			p, rn, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if p+rn == 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		mctx, cancel := mergeCtxCancel(jctx, ctx)
		err = r.workJob(mctx, job, q, logger.WithFields(logrus.Fields{"job": job.ID, "dataset": job.Path}))
		cancel()
		jcf()
		if err != nil {
			return err
		}
		if err = ctx.Err(); err != nil {
			return err
		}
	}
}

func (r *Runner) workJob(ctx context.Context, job *queue.Job, q queue.Queue, logger logrus.FieldLogger) error {
	r.metrics.inFlight.Inc()
	defer r.metrics.inFlight.Dec()
	start := time.Now()
	logger.Debug("processing dataset")
	err := r.Process(ctx, job)
	if err != nil && ctx.Err() != nil {
		if derr := q.Drop(context.Background(), job.ID); derr != nil {
			logger.WithError(derr).Warn("dropping job")
		}
		return ctx.Err()
	}
	status := StatusSucceeded
	if err != nil {
		status = StatusFailed
		logger.WithError(err).Error("skipping dataset")
	} else {
		logger.WithField("output", job.Output).Info("dataset processed")
	}
	r.metrics.record(status, time.Since(start).Seconds())
	return q.Complete(ctx, job.ID)
}

/*
Process reads the dataset of the job, cross-validates trees on it as many
times as the runner repetitions and writes the results file of the job.
*/
func (r *Runner) Process(ctx context.Context, job *queue.Job) error {
	columns := append(append([]feature.Feature{}, r.features...), r.label)
	ds, err := csv.ReadDatasetFromFilePath(job.Path, columns)
	if err != nil {
		return err
	}
	labels, err := ds.LabelOrder(r.label)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(job.Seed))
	repetitions := make([][]crossval.Result, r.repetitions)
	for i := range repetitions {
		repetitions[i], err = crossval.ProbDist(ctx, rng, ds, r.folds, func() crossval.Classifier {
			return mlcore.New(r.features, r.label, r.opts...)
		})
		if err != nil {
			return fmt.Errorf("cross-validation %d: %w", i, err)
		}
	}
	return WriteResults(job.Output, ds, columns, labels, repetitions)
}

// ResultsHeader returns the header of a results file for a dataset with the
// given columns and sorted labels cross-validated the given times
func ResultsHeader(columns []feature.Feature, labels []string, repetitions int) []string {
	header := make([]string, 0, len(columns)+repetitions*(len(labels)+1))
	for _, c := range columns {
		header = append(header, c.Name())
	}
	for j := 0; j < repetitions; j++ {
		header = append(header, fmt.Sprintf("dt-cv%d-fold", j))
		for _, l := range labels {
			header = append(header, fmt.Sprintf("dt-cv%d-p%s", j, l))
		}
	}
	return header
}

/*
WriteResults writes to path, creating its directory if needed, a results
file for the dataset: a CSV with the given columns of every sample followed,
for every cross-validation repetition, by the fold the sample was held out
in and the probability predicted for each of the sorted labels.
*/
func WriteResults(path string, ds dataset.Dataset, columns []feature.Feature, labels []string, repetitions [][]crossval.Result) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := encsv.NewWriter(f)
	if err = w.Write(ResultsHeader(columns, labels, len(repetitions))); err != nil {
		return fmt.Errorf("writing results header: %w", err)
	}
	for i, s := range ds.Samples() {
		record := make([]string, 0, len(columns))
		for _, c := range columns {
			v, err := s.ValueFor(c)
			if err != nil {
				return err
			}
			record = append(record, csv.FormatValue(v))
		}
		for _, results := range repetitions {
			res := results[i]
			record = append(record, strconv.Itoa(res.Fold))
			for _, l := range labels {
				record = append(record, decimal.NewFromFloat(res.Dist[l]).String())
			}
		}
		if err = w.Write(record); err != nil {
			return fmt.Errorf("writing results of sample %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

func mergeCtxCancel(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	mctx, cancel := context.WithCancel(ctx1)
	go func() {
		select {
		case <-mctx.Done():
		case <-ctx2.Done():
			cancel()
		}
	}()
	return mctx, cancel
}
