package qexp

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func single(gate Gate, q int) Op { return Op{Gate: gate, Qubits: []int{q}} }

func TestGroverCircuit(t *testing.T) {
	Convey("Given the grover circuit", t, func() {
		c := Grover()

		Convey("It should use a 2-qubit register", func() {
			So(c.Err(), ShouldBeNil)
			So(c.Qubits(), ShouldEqual, 2)
			So(c.Clbits(), ShouldEqual, 2)
		})

		Convey("It should contain the oracle and diffusion sequence in order", func() {
			cz := Op{Gate: GateCZ, Qubits: []int{0, 1}}
			want := []Op{
				single(GateH, 0), single(GateH, 1),
				single(GateS, 0), single(GateS, 1),
				cz,
				single(GateS, 0), single(GateS, 1),
				single(GateH, 0), single(GateH, 1),
				single(GateX, 0), single(GateX, 1),
				cz,
				single(GateX, 0), single(GateX, 1),
				single(GateH, 0), single(GateH, 1),
				{Gate: GateMeasure, Qubits: []int{0}, Clbit: 0},
				{Gate: GateMeasure, Qubits: []int{1}, Clbit: 1},
			}
			So(c.Ops(), ShouldResemble, want)
		})
	})
}

func TestBellCircuit(t *testing.T) {
	Convey("Given the bell circuit", t, func() {
		c := Bell()

		Convey("It should be H, CX and a measurement of every qubit", func() {
			So(c.Err(), ShouldBeNil)
			So(c.Qubits(), ShouldEqual, 4)
			So(c.Ops(), ShouldResemble, []Op{
				single(GateH, 0),
				{Gate: GateCX, Qubits: []int{0, 1}},
				{Gate: GateMeasure, Qubits: []int{0}, Clbit: 0},
				{Gate: GateMeasure, Qubits: []int{1}, Clbit: 1},
				{Gate: GateMeasure, Qubits: []int{2}, Clbit: 2},
				{Gate: GateMeasure, Qubits: []int{3}, Clbit: 3},
			})
		})
	})
}

func TestExperimentRegistry(t *testing.T) {
	Convey("Given the experiment registry", t, func() {
		Convey("Known experiments should resolve with their backend table", func() {
			exp, err := LookupExperiment("grover")
			So(err, ShouldBeNil)
			So(exp.Backends.Simulator, ShouldEqual, "ibmqx_qasm_simulator")

			exp, err = LookupExperiment("bell")
			So(err, ShouldBeNil)
			So(exp.Backends.DefaultHardware, ShouldEqual, "ibmqx5")
		})

		Convey("Unknown experiments should fail", func() {
			_, err := LookupExperiment("shor")
			So(errors.Is(err, ErrUnknownExperiment), ShouldBeTrue)
		})

		Convey("Experiments should be listed by name", func() {
			exps := Experiments()
			So(exps, ShouldHaveLength, 2)
			So(exps[0].Name, ShouldEqual, "bell")
			So(exps[1].Name, ShouldEqual, "grover")
		})
	})
}
