package qexp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/errnie"
	"golang.org/x/oauth2"
)

/*
RemoteBackend submits circuits as OpenQASM to a quantum experience style HTTP
API and polls the job until the service reports a final status. Requests are
authenticated with the configured API token as a bearer token.
*/
type RemoteBackend struct {
	name         string
	baseURL      string
	client       *http.Client
	limiter      *RateLimiter
	pollInterval time.Duration
}

// RemoteOption configures a RemoteBackend.
type RemoteOption func(*RemoteBackend)

// WithRateLimiter replaces the default request throttle.
func WithRateLimiter(rl *RateLimiter) RemoteOption {
	return func(b *RemoteBackend) {
		b.limiter = rl
	}
}

func WithPollInterval(d time.Duration) RemoteOption {
	return func(b *RemoteBackend) {
		b.pollInterval = d
	}
}

func NewRemoteBackend(name string, cfg *Config, opts ...RemoteOption) *RemoteBackend {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken})

	b := &RemoteBackend{
		name:    name,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{
			Transport: &oauth2.Transport{Source: ts},
			Timeout:   30 * time.Second,
		},
		limiter:      NewRateLimiter(5, 200*time.Millisecond),
		pollInterval: cfg.PollInterval,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *RemoteBackend) Name() string { return b.name }

type jobRequest struct {
	QASMs      []qasmEntry  `json:"qasms"`
	Shots      int          `json:"shots"`
	MaxCredits int          `json:"maxCredits"`
	Backend    backendField `json:"backend"`
}

type qasmEntry struct {
	QASM   string      `json:"qasm"`
	Status string      `json:"status,omitempty"`
	Result *qasmResult `json:"result,omitempty"`
}

type qasmResult struct {
	Date string `json:"date,omitempty"`
	Data struct {
		Counts map[string]int `json:"counts"`
		Time   float64        `json:"time,omitempty"`
	} `json:"data"`
}

type backendField struct {
	Name string `json:"name"`
}

type jobResponse struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	QASMs  []qasmEntry `json:"qasms"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (b *RemoteBackend) Run(ctx context.Context, circuit *Circuit, opts RunOptions) (*Result, error) {
	if err := circuit.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	id, err := b.submit(ctx, circuit, opts)
	if err != nil {
		return nil, err
	}

	errnie.Info("remote job %s submitted to %s", id, b.name)

	job, err := b.wait(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(job.QASMs) == 0 || job.QASMs[0].Result == nil {
		return nil, fmt.Errorf("job %s completed without a result: %w", id, ErrJobFailed)
	}

	return &Result{
		JobID:      opts.JobID,
		Backend:    b.name,
		Experiment: circuit.Name,
		Status:     job.Status,
		Shots:      opts.Shots,
		Counts:     job.QASMs[0].Result.Data.Counts,
		Duration:   time.Since(start),
	}, nil
}

func (b *RemoteBackend) submit(ctx context.Context, circuit *Circuit, opts RunOptions) (string, error) {
	body, err := json.Marshal(jobRequest{
		QASMs:      []qasmEntry{{QASM: circuit.QASM()}},
		Shots:      opts.Shots,
		MaxCredits: opts.MaxCredits,
		Backend:    backendField{Name: b.name},
	})
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}

	var resp jobResponse
	if err := b.do(ctx, http.MethodPost, b.baseURL+"/Jobs", body, &resp); err != nil {
		return "", fmt.Errorf("submit to %s: %w", b.name, err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("submit to %s: %s: %w", b.name, resp.Error.Message, ErrJobFailed)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("submit to %s: response carried no job id: %w", b.name, ErrJobFailed)
	}

	return resp.ID, nil
}

func (b *RemoteBackend) wait(ctx context.Context, id string) (*jobResponse, error) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		var job jobResponse
		if err := b.do(ctx, http.MethodGet, b.baseURL+"/Jobs/"+id, nil, &job); err != nil {
			return nil, fmt.Errorf("poll job %s: %w", id, err)
		}

		switch {
		case job.Status == StatusCompleted:
			return &job, nil
		case job.Status == StatusCancelled, strings.HasPrefix(job.Status, "ERROR"):
			return nil, fmt.Errorf("job %s ended with status %s: %w", id, job.Status, ErrJobFailed)
		}

		log.Debug("job pending", "job", id, "status", job.Status)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (b *RemoteBackend) do(ctx context.Context, method, url string, body []byte, out any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%s %s: %s: %s", method, url, resp.Status, strings.TrimSpace(string(msg)))
		// 4xx other than throttling will not change on retry
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", err, ErrJobFailed)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}

	return nil
}
