package qexp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itsubaki/q"
	"github.com/theapemachine/errnie"
)

/*
LocalSimulator runs circuits in-process on the itsubaki/q state vector
simulator. Each shot replays the circuit on a fresh register, so measurement
collapse in one shot never leaks into the next.
*/
type LocalSimulator struct {
	name       string
	keepMemory bool
}

func NewLocalSimulator() *LocalSimulator {
	return &LocalSimulator{name: LocalQASMSimulator, keepMemory: true}
}

func (s *LocalSimulator) Name() string { return s.name }

func (s *LocalSimulator) Run(ctx context.Context, circuit *Circuit, opts RunOptions) (*Result, error) {
	if err := circuit.Err(); err != nil {
		return nil, err
	}
	if opts.Shots < 1 {
		return nil, &ConfigError{Field: "shots", Err: fmt.Errorf("%d must be positive", opts.Shots)}
	}

	errnie.Info("local simulator running %s for %d shots", circuit.Name, opts.Shots)

	start := time.Now()
	ops := circuit.Ops()
	counts := make(map[string]int)

	var memory []string
	if s.keepMemory {
		memory = make([]string, 0, opts.Shots)
	}

	for shot := 0; shot < opts.Shots; shot++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("local simulator stopped after %d shots: %w", shot, err)
		}

		outcome := s.shot(circuit, ops)
		counts[outcome]++
		if s.keepMemory {
			memory = append(memory, outcome)
		}
	}

	return &Result{
		JobID:      opts.JobID,
		Backend:    s.name,
		Experiment: circuit.Name,
		Status:     StatusCompleted,
		Shots:      opts.Shots,
		Counts:     counts,
		Memory:     memory,
		Duration:   time.Since(start),
	}, nil
}

// shot returns the classical register after one execution, clbit 0 rightmost.
func (s *LocalSimulator) shot(circuit *Circuit, ops []Op) string {
	qsim := q.New()

	reg := make([]q.Qubit, circuit.Qubits())
	for i := range reg {
		reg[i] = qsim.Zero()
	}

	clbits := make([]byte, circuit.Clbits())
	for i := range clbits {
		clbits[i] = '0'
	}

	for _, op := range ops {
		switch op.Gate {
		case GateH:
			qsim.H(reg[op.Qubits[0]])
		case GateX:
			qsim.X(reg[op.Qubits[0]])
		case GateS:
			qsim.S(reg[op.Qubits[0]])
		case GateCZ:
			qsim.CZ(reg[op.Qubits[0]], reg[op.Qubits[1]])
		case GateCX:
			qsim.CNOT(reg[op.Qubits[0]], reg[op.Qubits[1]])
		case GateMeasure:
			if qsim.Measure(reg[op.Qubits[0]]).IsOne() {
				clbits[op.Clbit] = '1'
			} else {
				clbits[op.Clbit] = '0'
			}
		}
	}

	var b strings.Builder
	for i := len(clbits) - 1; i >= 0; i-- {
		b.WriteByte(clbits[i])
	}
	return b.String()
}
