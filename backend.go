package qexp

import "context"

// RunOptions carries the per-job settings a backend needs.
type RunOptions struct {
	JobID      string
	Shots      int
	MaxCredits int
}

/*
Backend executes a circuit and blocks until its result is available or ctx
is done. Implementations must report a job the service rejected or aborted
as ErrJobFailed so the runner does not retry it.
*/
type Backend interface {
	Name() string
	Run(ctx context.Context, circuit *Circuit, opts RunOptions) (*Result, error)
}
