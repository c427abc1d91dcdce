package qexp

import (
	"time"

	"github.com/google/uuid"
)

// Job is one submission of a circuit to a named backend.
type Job struct {
	ID            string
	Experiment    string
	Circuit       *Circuit
	Backend       string
	Shots         int
	MaxCredits    int
	RetryPolicy   *RetryPolicy
	CircuitID     string
	CircuitConfig *CircuitBreakerConfig
	Timeout       time.Duration
	Attempt       int
	LastError     error
	StartTime     time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// CircuitBreakerConfig struct
type CircuitBreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

/*
NewJob prepares a job for circuit on backend with the run settings from cfg.
The circuit breaker is keyed by backend so repeated failures against one
service do not block another.
*/
func NewJob(experiment string, circuit *Circuit, backend string, cfg *Config, opts ...JobOption) *Job {
	job := &Job{
		ID:         uuid.NewString(),
		Experiment: experiment,
		Circuit:    circuit,
		Backend:    backend,
		Shots:      cfg.Shots,
		MaxCredits: cfg.MaxCredits,
		Timeout:    cfg.Timeout,
		RetryPolicy: &RetryPolicy{
			MaxAttempts: cfg.Retries,
			Strategy:    &ExponentialBackoff{Initial: time.Second},
			Filter:      Retryable,
		},
		CircuitID: backend,
		CircuitConfig: &CircuitBreakerConfig{
			MaxFailures:  5,
			ResetTimeout: time.Minute,
			HalfOpenMax:  1,
		},
	}

	for _, opt := range opts {
		opt(job)
	}

	return job
}

// WithTimeout bounds the whole job, retries included.
func WithTimeout(d time.Duration) JobOption {
	return func(j *Job) {
		j.Timeout = d
	}
}
