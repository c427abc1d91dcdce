package qexp

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackendSelection(t *testing.T) {
	Convey("Given the grover backend table", t, func() {
		Convey("Local runs should use the local simulator", func() {
			name, err := GroverBackends.Select(Selection{Local: true, DeviceQubits: 5})
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "local_qasm_simulator")
		})

		Convey("Remote simulator runs should use the remote simulator", func() {
			name, err := GroverBackends.Select(Selection{Simulator: true, DeviceQubits: 5})
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "ibmqx_qasm_simulator")
		})

		Convey("Hardware runs should pick the device by size", func() {
			name, err := GroverBackends.Select(Selection{DeviceQubits: 5})
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "ibmqx4")

			name, err = GroverBackends.Select(Selection{DeviceQubits: 16})
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "ibmqx5")
		})

		Convey("An unsupported device size should be a configuration error", func() {
			name, err := GroverBackends.Select(Selection{DeviceQubits: 7})
			So(name, ShouldBeEmpty)
			So(errors.Is(err, ErrUnsupportedQubits), ShouldBeTrue)

			var cfgErr *ConfigError
			So(errors.As(err, &cfgErr), ShouldBeTrue)
			So(cfgErr.Field, ShouldEqual, "device_qubits")
			So(err.Error(), ShouldContainSubstring, "only 5 qubit and 16 qubit")
		})

		Convey("Local should win over an unsupported device size", func() {
			name, err := GroverBackends.Select(Selection{Local: true, DeviceQubits: 7})
			So(err, ShouldBeNil)
			So(name, ShouldEqual, LocalQASMSimulator)
		})
	})

	Convey("Given the bell backend table", t, func() {
		Convey("Each combination should resolve", func() {
			cases := map[Selection]string{
				{Local: true, DeviceQubits: 4}:     "local_qasm_simulator",
				{Simulator: true, DeviceQubits: 4}: "ibmq_qasm_simulator",
				{DeviceQubits: 4}:                  "ibmqx5",
				{DeviceQubits: 16}:                 "ibmqx5",
			}

			for sel, want := range cases {
				name, err := BellBackends.Select(sel)
				So(err, ShouldBeNil)
				So(name, ShouldEqual, want)
			}
		})
	})

	Convey("Names should list every backend once, sorted", t, func() {
		So(GroverBackends.Names(), ShouldResemble, []string{
			"ibmqx4", "ibmqx5", "ibmqx_qasm_simulator", "local_qasm_simulator",
		})
		So(BellBackends.Names(), ShouldResemble, []string{
			"ibmq_qasm_simulator", "ibmqx5", "local_qasm_simulator",
		})
	})
}
