package qexp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/errnie"
)

// BackendFactory builds the backend for a name the selection table returned.
type BackendFactory func(name string, cfg *Config) (Backend, error)

/*
DefaultBackendFactory serves the local simulator in-process and sends every
other name to the remote service configured in cfg.
*/
func DefaultBackendFactory(name string, cfg *Config) (Backend, error) {
	if name == "" {
		return nil, fmt.Errorf("empty backend name: %w", ErrUnknownBackend)
	}
	if IsLocal(name) {
		return NewLocalSimulator(), nil
	}
	return NewRemoteBackend(name, cfg), nil
}

/*
Runner executes jobs one at a time. It owns a circuit breaker per backend and
the metrics of every job it has run, so a long-lived Runner stops hammering a
backend that keeps failing.
*/
type Runner struct {
	config     *Config
	factory    BackendFactory
	metrics    *Metrics
	breakersMu sync.Mutex
	breakers   map[string]*CircuitBreaker
	backendsMu sync.Mutex
	backends   map[string]Backend
}

func NewRunner(cfg *Config, factory BackendFactory) *Runner {
	if cfg == nil {
		cfg = NewConfig()
	}
	if factory == nil {
		factory = DefaultBackendFactory
	}

	return &Runner{
		config:   cfg,
		factory:  factory,
		metrics:  NewMetrics(),
		breakers: make(map[string]*CircuitBreaker),
		backends: make(map[string]Backend),
	}
}

func (r *Runner) Metrics() *Metrics { return r.metrics }

/*
RunExperiment selects the backend for exp from the runner's config, builds the
circuit and executes it. This is the whole pipeline of one experiment.
*/
func (r *Runner) RunExperiment(ctx context.Context, exp Experiment, opts ...JobOption) (*Result, error) {
	name, err := exp.Backends.Select(r.config.Selection())
	if err != nil {
		return nil, err
	}

	circuit := exp.Build()
	if err := circuit.Err(); err != nil {
		return nil, err
	}

	return r.Execute(ctx, NewJob(exp.Name, circuit, name, r.config, opts...))
}

// Execute runs job to completion, applying its retry policy and circuit breaker.
func (r *Runner) Execute(ctx context.Context, job *Job) (*Result, error) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	job.StartTime = time.Now()

	backend, err := r.backend(job.Backend)
	if err != nil {
		return nil, err
	}

	breaker := r.getCircuitBreaker(job)
	if breaker != nil && !breaker.Allow() {
		r.metrics.recordRejection()
		return nil, fmt.Errorf("backend %s: %w", job.Backend, ErrCircuitOpen)
	}

	errnie.Info("running job %s (%s) on %s", job.ID, job.Experiment, job.Backend)

	result, err := r.executeWithRetries(ctx, backend, breaker, job)
	r.metrics.recordJobExecution(job.StartTime, err == nil)
	if breaker != nil {
		r.metrics.recordBreakerState(job.Backend, breaker.State())
	}

	if err != nil {
		return nil, err
	}

	if result.JobID == "" {
		result.JobID = job.ID
	}
	return result, nil
}

func (r *Runner) executeWithRetries(ctx context.Context, backend Backend, breaker *CircuitBreaker, job *Job) (*Result, error) {
	policy := job.RetryPolicy
	if policy == nil || policy.MaxAttempts < 1 {
		policy = &RetryPolicy{MaxAttempts: 1}
	}
	strategy := policy.Strategy
	if strategy == nil {
		strategy = &ExponentialBackoff{Initial: time.Second}
	}

	opts := RunOptions{JobID: job.ID, Shots: job.Shots, MaxCredits: job.MaxCredits}
	tries := 0

	for job.Attempt = 0; job.Attempt < policy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := strategy.NextDelay(job.Attempt)
			log.Info("retrying job", "job", job.ID, "attempt", job.Attempt+1, "delay", delay)
			r.metrics.recordRetry()

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("job %s: %w (last error: %v)", job.ID, ctx.Err(), job.LastError)
			case <-time.After(delay):
			}
		}

		tries++
		result, err := backend.Run(ctx, job.Circuit, opts)
		if err == nil {
			if breaker != nil {
				breaker.RecordSuccess()
			}
			return result, nil
		}

		job.LastError = err
		log.Warn("job attempt failed", "job", job.ID, "attempt", job.Attempt+1, "err", err)
		if breaker != nil {
			breaker.RecordFailure()
		}

		if policy.Filter != nil && !policy.Filter(err) {
			break
		}
		if breaker != nil && !breaker.Allow() {
			break
		}
	}

	return nil, fmt.Errorf("job %s failed after %d attempt(s): %w", job.ID, tries, job.LastError)
}

func (r *Runner) backend(name string) (Backend, error) {
	r.backendsMu.Lock()
	defer r.backendsMu.Unlock()

	if b, ok := r.backends[name]; ok {
		return b, nil
	}

	b, err := r.factory(name, r.config)
	if err != nil {
		return nil, err
	}
	r.backends[name] = b
	return b, nil
}

func (r *Runner) getCircuitBreaker(job *Job) *CircuitBreaker {
	if job.CircuitID == "" || job.CircuitConfig == nil {
		return nil
	}

	r.breakersMu.Lock()
	defer r.breakersMu.Unlock()

	breaker, exists := r.breakers[job.CircuitID]
	if !exists {
		breaker = NewCircuitBreaker(
			job.CircuitID,
			job.CircuitConfig.MaxFailures,
			job.CircuitConfig.ResetTimeout,
			job.CircuitConfig.HalfOpenMax,
		)
		r.breakers[job.CircuitID] = breaker
	}

	return breaker
}
