package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hafniz/mlcore/batch"
	"github.com/hafniz/mlcore/queue"
	qjson "github.com/hafniz/mlcore/queue/json"
	"github.com/hafniz/mlcore/queue/redisq"
	"github.com/hafniz/mlcore/tree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	redis "gopkg.in/redis.v5"
)

type batchCmdConfig struct {
	*rootCmdConfig
	configInput     string
	join            bool
	fallback        bool
	jobMaxRun       time.Duration
	lockTTL         time.Duration
	emptyQueueSleep time.Duration
}

func batchCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &batchCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Cross-validate trees on many datasets",
		Long: `Cross-validate trees on every dataset listed on a config file, writing a results file
per dataset. Datasets are processed by a pool of workers through a queue, that can be kept on
redis to share the run among several processes.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fail(1, err)
			}
			cfg, err := batch.LoadConfig(config.configInput)
			if err != nil {
				fail(2, err)
			}
			log := config.Logger()
			if err = log.SetLevelName(cfg.Log.Level); err != nil {
				fail(2, err)
			}
			features, label, err := config.readMetadata(cfg.Metadata, cfg.Label)
			if err != nil {
				fail(3, err)
			}
			ctx := config.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := batch.NewMetrics(reg)
			if cfg.Metrics.Listen != "" {
				srv := serveMetrics(cfg.Metrics.Listen, reg, log.Logger)
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(sctx); err != nil {
						log.WithError(err).Warn("shutting down metrics server")
					}
				}()
			}

			q, err := config.queue(cfg)
			if err != nil {
				fail(4, err)
			}
			if !config.join {
				jobs, err := batch.Enqueue(ctx, q, cfg)
				if err != nil {
					fail(5, err)
				}
				log.WithField("datasets", len(jobs)).Info("datasets enqueued")
			}

			var opts []tree.Option
			if config.fallback {
				opts = append(opts, tree.WithUnseenValueFallback())
			}
			runner := batch.NewRunner(features, label, cfg, log.Logger, metrics, opts...)
			start := time.Now()
			err = runner.Run(ctx, q, cfg.Workers, config.emptyQueueSleep)
			if serr := q.Stop(context.Background()); serr != nil {
				log.WithError(serr).Warn("stopping queue")
			}
			finishRun(log, start, err)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.configInput), "config", "c", "", "path to a YML file with the configuration of the run (required)")
	cmd.PersistentFlags().BoolVar(&(config.join), "join", false, "only work on the jobs of a run already enqueued on redis")
	cmd.PersistentFlags().BoolVar(&(config.fallback), "unseen-value-fallback", false, "predict the distribution of the node for values never seen while growing instead of failing")
	cmd.PersistentFlags().DurationVar(&(config.jobMaxRun), "job-max-run", time.Hour, "time after which a job running on redis is considered dropped and made pending again (0 to disable)")
	cmd.PersistentFlags().DurationVar(&(config.lockTTL), "lock-ttl", 10*time.Second, "expiration of the locks on redis jobs")
	cmd.PersistentFlags().DurationVar(&(config.emptyQueueSleep), "empty-queue-sleep", time.Second, "time workers wait to check the queue again when no job is pending but some are running")
	return cmd
}

func (bcc *batchCmdConfig) Validate() error {
	if bcc.configInput == "" {
		return fmt.Errorf("required config flag was not set")
	}
	if bcc.jobMaxRun < 0 {
		return fmt.Errorf("job-max-run cannot be negative")
	}
	if bcc.lockTTL <= 0 {
		return fmt.Errorf("lock-ttl must be positive")
	}
	if bcc.emptyQueueSleep <= 0 {
		return fmt.Errorf("empty-queue-sleep must be positive")
	}
	return nil
}

// finishRun logs the end of a batch run started at start, exiting with
// code 6 if the run was aborted with err
func finishRun(log *logger, start time.Time, err error) {
	if err != nil {
		log.WithError(err).Error("batch run aborted")
		fail(6, fmt.Errorf("batch run aborted: %w", err))
		return
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("batch run finished")
}

func (bcc *batchCmdConfig) queue(cfg *batch.Config) (queue.Queue, error) {
	switch cfg.Queue.Backend {
	case batch.RedisBackend:
		bcc.Logf("Using redis queue %s at %s...", cfg.Queue.Redis.ID, cfg.Queue.Redis.Addr)
		rc := redis.NewClient(&redis.Options{Addr: cfg.Queue.Redis.Addr})
		if err := rc.Ping().Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Queue.Redis.Addr, err)
		}
		return redisq.New(cfg.Queue.Redis.ID, rc, bcc.jobMaxRun, bcc.lockTTL, qjson.New()), nil
	case batch.MemoryBackend:
		if bcc.join {
			return nil, fmt.Errorf("cannot join a run on a memory queue")
		}
		return queue.New(), nil
	}
	return nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
}

func serveMetrics(addr string, reg *prometheus.Registry, log logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.WithField("addr", addr).Info("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("serving metrics")
		}
	}()
	return srv
}
