package qexp

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type stubBackend struct {
	name  string
	calls int
	run   func(call int) (*Result, error)
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Run(ctx context.Context, circuit *Circuit, opts RunOptions) (*Result, error) {
	s.calls++
	return s.run(s.calls)
}

// hangingBackend never finishes on its own and returns once ctx is done.
type hangingBackend struct {
	calls int
}

func (h *hangingBackend) Name() string { return "hanging" }

func (h *hangingBackend) Run(ctx context.Context, circuit *Circuit, opts RunOptions) (*Result, error) {
	h.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func stubFactory(b Backend) BackendFactory {
	return func(name string, cfg *Config) (Backend, error) {
		return b, nil
	}
}

func quickRetry(attempts int) JobOption {
	return WithRetry(attempts, &ExponentialBackoff{Initial: time.Millisecond})
}

func TestRunner(t *testing.T) {
	Convey("Given a runner with the default local configuration", t, func() {
		cfg := NewConfig()
		cfg.Shots = 64
		runner := NewRunner(cfg, nil)
		ctx := context.Background()

		Convey("Running grover end to end should produce 2-bit counts", func() {
			exp, _ := LookupExperiment("grover")
			result, err := runner.RunExperiment(ctx, exp)

			So(err, ShouldBeNil)
			So(result.JobID, ShouldNotBeEmpty)
			So(result.Experiment, ShouldEqual, "grover")
			So(result.Backend, ShouldEqual, LocalQASMSimulator)
			So(result.Total(), ShouldEqual, 64)
			for outcome := range result.Counts {
				So(outcome, ShouldHaveLength, 2)
			}
		})

		Convey("Running bell end to end should produce 4-bit counts", func() {
			exp, _ := LookupExperiment("bell")
			result, err := runner.RunExperiment(ctx, exp)

			So(err, ShouldBeNil)
			So(result.Counts, ShouldNotBeEmpty)
			for outcome := range result.Counts {
				So(outcome, ShouldHaveLength, 4)
			}

			So(runner.Metrics().ExportMetrics()["job_count"], ShouldEqual, int64(1))
		})
	})

	Convey("Given hardware selection with an unsupported device", t, func() {
		cfg := NewConfig()
		cfg.Local = false
		cfg.Simulator = false
		cfg.DeviceQubits = 3
		runner := NewRunner(cfg, nil)

		Convey("The experiment should fail before anything is submitted", func() {
			exp, _ := LookupExperiment("grover")
			_, err := runner.RunExperiment(context.Background(), exp)
			So(errors.Is(err, ErrUnsupportedQubits), ShouldBeTrue)
			So(runner.Metrics().ExportMetrics()["job_count"], ShouldEqual, int64(0))
		})
	})

	Convey("Given a backend that fails transiently", t, func() {
		stub := &stubBackend{name: "flaky", run: func(call int) (*Result, error) {
			if call < 3 {
				return nil, errors.New("connection reset")
			}
			return &Result{Status: StatusCompleted, Counts: map[string]int{"00": 1}}, nil
		}}
		runner := NewRunner(NewConfig(), stubFactory(stub))

		Convey("The runner should retry until it succeeds", func() {
			job := NewJob("grover", Grover(), "flaky", NewConfig(), quickRetry(3))
			result, err := runner.Execute(context.Background(), job)

			So(err, ShouldBeNil)
			So(stub.calls, ShouldEqual, 3)
			So(result.JobID, ShouldEqual, job.ID)
			So(runner.Metrics().Retries, ShouldEqual, int64(2))
		})

		Convey("The runner should give up after the configured attempts", func() {
			job := NewJob("grover", Grover(), "flaky", NewConfig(), quickRetry(2))
			_, err := runner.Execute(context.Background(), job)

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "after 2 attempt(s)")
			So(err.Error(), ShouldContainSubstring, "connection reset")
			So(stub.calls, ShouldEqual, 2)
		})
	})

	Convey("Given a backend that rejects the job", t, func() {
		stub := &stubBackend{name: "strict", run: func(int) (*Result, error) {
			return nil, ErrJobFailed
		}}
		runner := NewRunner(NewConfig(), stubFactory(stub))

		Convey("The runner should not retry", func() {
			job := NewJob("bell", Bell(), "strict", NewConfig(), quickRetry(5))
			_, err := runner.Execute(context.Background(), job)

			So(errors.Is(err, ErrJobFailed), ShouldBeTrue)
			So(stub.calls, ShouldEqual, 1)
		})
	})

	Convey("Given a backend that reports a configuration error", t, func() {
		stub := &stubBackend{name: "misconfigured", run: func(int) (*Result, error) {
			return nil, &ConfigError{Field: "shots", Err: errors.New("too many shots for device")}
		}}
		runner := NewRunner(NewConfig(), stubFactory(stub))

		Convey("The runner should not retry", func() {
			job := NewJob("grover", Grover(), "misconfigured", NewConfig(), quickRetry(5))
			_, err := runner.Execute(context.Background(), job)

			var cfgErr *ConfigError
			So(errors.As(err, &cfgErr), ShouldBeTrue)
			So(cfgErr.Field, ShouldEqual, "shots")
			So(stub.calls, ShouldEqual, 1)
			So(runner.Metrics().Retries, ShouldEqual, int64(0))
		})
	})

	Convey("Given a backend that never answers", t, func() {
		hang := &hangingBackend{}
		runner := NewRunner(NewConfig(), stubFactory(hang))

		Convey("The job timeout should cut the run short", func() {
			job := NewJob("bell", Bell(), "hanging", NewConfig(), quickRetry(3), WithTimeout(20*time.Millisecond))

			start := time.Now()
			_, err := runner.Execute(context.Background(), job)

			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 5*time.Second)
			So(hang.calls, ShouldEqual, 1)
			So(runner.Metrics().ExportMetrics()["job_count"], ShouldEqual, int64(1))
		})
	})

	Convey("Given a backend that keeps failing", t, func() {
		stub := &stubBackend{name: "down", run: func(int) (*Result, error) {
			return nil, errors.New("unavailable")
		}}
		runner := NewRunner(NewConfig(), stubFactory(stub))

		Convey("The circuit breaker should open and reject further jobs", func() {
			opts := []JobOption{quickRetry(10), WithCircuitBreaker("down", 3, time.Minute)}

			_, err := runner.Execute(context.Background(), NewJob("bell", Bell(), "down", NewConfig(), opts...))
			So(err, ShouldNotBeNil)
			So(stub.calls, ShouldEqual, 3)

			_, err = runner.Execute(context.Background(), NewJob("bell", Bell(), "down", NewConfig(), opts...))
			So(errors.Is(err, ErrCircuitOpen), ShouldBeTrue)
			So(stub.calls, ShouldEqual, 3)

			metrics := runner.Metrics().ExportMetrics()
			So(metrics["breaker_rejections"], ShouldEqual, int64(1))
			So(runner.Metrics().CircuitBreakerStates["down"], ShouldEqual, CircuitOpen)
		})
	})
}
