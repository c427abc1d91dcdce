package qexp

import (
	"fmt"
	"strings"
)

/*
Draw renders the circuit as a text diagram with one wire per qubit and one
column per operation. Controls are drawn as '*', a CX target as '+', a
measurement as 'M', and '|' marks a wire crossed by a two-qubit gate.

	q[0]: -H-*-M-
	q[1]: ---+---
*/
func (c *Circuit) Draw() string {
	wires := make([]strings.Builder, c.qubits)
	for i := range wires {
		fmt.Fprintf(&wires[i], "q[%d]: -", i)
	}

	for _, op := range c.ops {
		cells := make([]string, c.qubits)
		for i := range cells {
			cells[i] = "-"
		}

		switch op.Gate {
		case GateCX, GateCZ:
			a, b := op.Qubits[0], op.Qubits[1]
			lo, hi := min(a, b), max(a, b)
			for i := lo + 1; i < hi; i++ {
				cells[i] = "|"
			}
			cells[a] = "*"
			if op.Gate == GateCX {
				cells[b] = "+"
			} else {
				cells[b] = "*"
			}
		case GateMeasure:
			cells[op.Qubits[0]] = "M"
		default:
			cells[op.Qubits[0]] = strings.ToUpper(string(op.Gate))
		}

		for i, cell := range cells {
			wires[i].WriteString(cell)
			wires[i].WriteString("-")
		}
	}

	lines := make([]string, len(wires))
	for i := range wires {
		lines[i] = wires[i].String()
	}
	return strings.Join(lines, "\n") + "\n"
}
