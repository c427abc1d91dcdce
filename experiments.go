package qexp

import (
	"fmt"
	"sort"
)

// Experiment pairs a fixed circuit recipe with the backends it may run on.
type Experiment struct {
	Name        string
	Description string
	Backends    BackendTable
	Build       func() *Circuit
}

var experiments = map[string]Experiment{
	"grover": {
		Name:        "grover",
		Description: "2-qubit Grover search with a phase oracle and inversion about the mean",
		Backends:    GroverBackends,
		Build:       Grover,
	},
	"bell": {
		Name:        "bell",
		Description: "4-qubit register with qubits 0 and 1 prepared in a Bell state",
		Backends:    BellBackends,
		Build:       Bell,
	},
}

func LookupExperiment(name string) (Experiment, error) {
	exp, ok := experiments[name]
	if !ok {
		return Experiment{}, fmt.Errorf("%q: %w", name, ErrUnknownExperiment)
	}
	return exp, nil
}

// Experiments returns every registered experiment sorted by name.
func Experiments() []Experiment {
	out := make([]Experiment, 0, len(experiments))
	for _, exp := range experiments {
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

/*
Grover builds the 2-qubit search circuit. The oracle is S on both qubits
around a CZ, which phase-flips |00>, and the diffusion operator is the usual
H X CZ X H sandwich. One iteration is exact for N=2, so an ideal backend
only ever reports "00".
*/
func Grover() *Circuit {
	c := NewCircuit("grover", 2)

	// oracle
	c.Each(c.H)
	c.Each(c.S)
	c.CZ(0, 1)
	c.Each(c.S)
	c.Each(c.H)

	// inversion about the mean
	c.Each(c.X)
	c.CZ(0, 1)
	c.Each(c.X)
	c.Each(c.H)

	return c.MeasureAll()
}

// Bell entangles qubits 0 and 1 of a 4-qubit register and measures all four.
func Bell() *Circuit {
	return NewCircuit("bell", 4).
		H(0).
		CX(0, 1).
		MeasureAll()
}
