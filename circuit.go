package qexp

import (
	"fmt"
	"strings"
)

// Gate names a fixed operation supported by the backends.
type Gate string

const (
	GateH       Gate = "h"
	GateX       Gate = "x"
	GateS       Gate = "s"
	GateCZ      Gate = "cz"
	GateCX      Gate = "cx"
	GateMeasure Gate = "measure"
)

/*
Op is a single operation in a circuit. Qubits holds the qubit operands in
order (control first for two-qubit gates). Clbit is only meaningful for a
measurement.
*/
type Op struct {
	Gate   Gate
	Qubits []int
	Clbit  int
}

func (op Op) String() string {
	switch op.Gate {
	case GateMeasure:
		return fmt.Sprintf("measure q[%d] -> c[%d]", op.Qubits[0], op.Clbit)
	case GateCZ, GateCX:
		return fmt.Sprintf("%s q[%d],q[%d]", op.Gate, op.Qubits[0], op.Qubits[1])
	default:
		return fmt.Sprintf("%s q[%d]", op.Gate, op.Qubits[0])
	}
}

/*
Circuit is an ordered list of operations over a quantum register and a
classical register of the same width. The builder methods return the circuit
so a recipe reads top to bottom. An invalid operand is recorded and every later
call is ignored; check Err once the circuit is built.
*/
type Circuit struct {
	Name   string
	qubits int
	ops    []Op
	err    error
}

func NewCircuit(name string, qubits int) *Circuit {
	c := &Circuit{Name: name, qubits: qubits}
	if qubits < 1 {
		c.err = fmt.Errorf("circuit %s: register width %d must be positive", name, qubits)
	}
	return c
}

func (c *Circuit) Qubits() int { return c.qubits }
func (c *Circuit) Clbits() int { return c.qubits }

// Err returns the first operand error recorded while building.
func (c *Circuit) Err() error { return c.err }

// Ops returns a copy of the operations in application order.
func (c *Circuit) Ops() []Op {
	out := make([]Op, len(c.ops))
	for i, op := range c.ops {
		out[i] = Op{Gate: op.Gate, Qubits: append([]int(nil), op.Qubits...), Clbit: op.Clbit}
	}
	return out
}

func (c *Circuit) H(q int) *Circuit { return c.append(GateH, q) }
func (c *Circuit) X(q int) *Circuit { return c.append(GateX, q) }
func (c *Circuit) S(q int) *Circuit { return c.append(GateS, q) }
func (c *Circuit) CZ(a, b int) *Circuit { return c.append(GateCZ, a, b) }

// CX applies a controlled-NOT with control and target.
func (c *Circuit) CX(control, target int) *Circuit { return c.append(GateCX, control, target) }

// Each applies gate to every qubit of the register in index order.
func (c *Circuit) Each(gate func(int) *Circuit) *Circuit {
	for i := 0; i < c.qubits; i++ {
		gate(i)
	}
	return c
}

func (c *Circuit) Measure(q, clbit int) *Circuit {
	if c.err != nil {
		return c
	}
	if clbit < 0 || clbit >= c.qubits {
		c.err = fmt.Errorf("circuit %s: clbit %d out of range [0,%d)", c.Name, clbit, c.qubits)
		return c
	}
	if c.append(GateMeasure, q); c.err == nil {
		c.ops[len(c.ops)-1].Clbit = clbit
	}
	return c
}

// MeasureAll measures qubit i into clbit i for the whole register.
func (c *Circuit) MeasureAll() *Circuit {
	for i := 0; i < c.qubits; i++ {
		c.Measure(i, i)
	}
	return c
}

func (c *Circuit) append(gate Gate, qubits ...int) *Circuit {
	if c.err != nil {
		return c
	}

	for i, q := range qubits {
		if q < 0 || q >= c.qubits {
			c.err = fmt.Errorf("circuit %s: %s operand q[%d] out of range [0,%d)", c.Name, gate, q, c.qubits)
			return c
		}
		for _, prev := range qubits[:i] {
			if prev == q {
				c.err = fmt.Errorf("circuit %s: %s repeats operand q[%d]", c.Name, gate, q)
				return c
			}
		}
	}

	c.ops = append(c.ops, Op{Gate: gate, Qubits: qubits})
	return c
}

// QASM renders the circuit as an OpenQASM 2.0 program.
func (c *Circuit) QASM() string {
	var b strings.Builder

	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.qubits)
	fmt.Fprintf(&b, "creg c[%d];\n", c.qubits)

	for _, op := range c.ops {
		b.WriteString(op.String())
		b.WriteString(";\n")
	}

	return b.String()
}
