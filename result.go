package qexp

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StatusCompleted = "COMPLETED"
	StatusRunning   = "RUNNING"
	StatusCancelled = "CANCELLED"
)

/*
Result is what a backend returns for one job. Counts maps a classical
bitstring, clbit 0 rightmost, to the number of shots that produced it.
Memory is the per-shot outcome list and is only filled by backends that keep
it.
*/
type Result struct {
	JobID      string         `json:"job_id" yaml:"job_id"`
	Backend    string         `json:"backend" yaml:"backend"`
	Experiment string         `json:"experiment" yaml:"experiment"`
	Status     string         `json:"status" yaml:"status"`
	Shots      int            `json:"shots" yaml:"shots"`
	Counts     map[string]int `json:"counts" yaml:"counts"`
	Memory     []string       `json:"memory,omitempty" yaml:"memory,omitempty"`
	Duration   time.Duration  `json:"duration" yaml:"duration"`
}

func (r *Result) String() string {
	return fmt.Sprintf("%s - %s job %s on %s (%d shots)",
		r.Status, r.Experiment, r.JobID, r.Backend, r.Shots)
}

// GetCounts returns a copy of the measurement counts.
func (r *Result) GetCounts() map[string]int {
	return maps.Clone(r.Counts)
}

// GetData returns the raw result payload.
func (r *Result) GetData() map[string]any {
	data := map[string]any{
		"counts": r.GetCounts(),
	}
	if len(r.Memory) > 0 {
		data["memory"] = append([]string(nil), r.Memory...)
	}
	return data
}

// Outcomes returns the observed bitstrings in ascending order.
func (r *Result) Outcomes() []string {
	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Result) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

func (r *Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (r *Result) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}
