package qexp

import (
	"fmt"
	"sort"
)

const LocalQASMSimulator = "local_qasm_simulator"

/*
BackendTable is the static decision table that maps a run configuration to a
backend name. Hardware is keyed by device size. DefaultHardware, when set, is
used for any size missing from Hardware.
*/
type BackendTable struct {
	Local           string
	Simulator       string
	Hardware        map[int]string
	DefaultHardware string
}

// Selection is the part of Config that decides where a circuit runs.
type Selection struct {
	Local        bool
	Simulator    bool
	DeviceQubits int
}

func (cfg *Config) Selection() Selection {
	return Selection{
		Local:        cfg.Local,
		Simulator:    cfg.Simulator,
		DeviceQubits: cfg.DeviceQubits,
	}
}

var (
	GroverBackends = BackendTable{
		Local:     LocalQASMSimulator,
		Simulator: "ibmqx_qasm_simulator",
		Hardware: map[int]string{
			5:  "ibmqx4",
			16: "ibmqx5",
		},
	}

	BellBackends = BackendTable{
		Local:           LocalQASMSimulator,
		Simulator:       "ibmq_qasm_simulator",
		DefaultHardware: "ibmqx5",
	}
)

// Select returns the backend name for sel.
func (t BackendTable) Select(sel Selection) (string, error) {
	switch {
	case sel.Local:
		return t.Local, nil
	case sel.Simulator:
		return t.Simulator, nil
	}

	if name, ok := t.Hardware[sel.DeviceQubits]; ok {
		return name, nil
	}

	if t.DefaultHardware != "" {
		return t.DefaultHardware, nil
	}

	return "", &ConfigError{
		Field: "device_qubits",
		Err:   fmt.Errorf("%d: %w", sel.DeviceQubits, ErrUnsupportedQubits),
	}
}

// Names lists every backend the table can return, sorted.
func (t BackendTable) Names() []string {
	seen := map[string]struct{}{}
	add := func(name string) {
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	add(t.Local)
	add(t.Simulator)
	add(t.DefaultHardware)
	for _, name := range t.Hardware {
		add(name)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLocal reports whether name runs in-process.
func IsLocal(name string) bool {
	return name == LocalQASMSimulator
}
