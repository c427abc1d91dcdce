// Package cli wires the qexp commands, flags and configuration together.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	format     string
	draw       bool
	histogram  bool
	verbose    bool
}

// NewRootCmd creates the root cobra command
func NewRootCmd() *cobra.Command {
	v := viper.New()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "qexp",
		Short: "Run fixed quantum experiments on a local simulator or a remote backend",
		Long: `qexp builds a small, fixed quantum circuit, submits it to the selected
backend and prints the measurement counts.

Settings come from qconfig.{yaml,json,toml}, QEXP_* environment variables
and the flags below, in increasing order of precedence.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(os.Stderr)
			if opts.verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default qconfig.* in ., $HOME/.qexp, /etc/qexp)")
	flags.StringVar(&opts.format, "format", "text", "output format: text, json or yaml")
	flags.BoolVar(&opts.draw, "draw", false, "print a diagram of the circuit")
	flags.BoolVar(&opts.histogram, "histogram", false, "print a histogram of the counts")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	flags.Bool("local", true, "run on the local simulator")
	flags.Bool("simulator", true, "use the remote simulator instead of hardware")
	flags.Int("shots", 1024, "number of shots per job")
	flags.Int("max-credits", 3, "maximum credits a remote job may spend")
	flags.Int("device-qubits", 5, "qubit count of the hardware device to target")
	flags.Duration("timeout", 0, "overall job timeout (0 keeps the configured value)")

	for key, flag := range map[string]string{
		"local":         "local",
		"simulator":     "simulator",
		"shots":         "shots",
		"max_credits":   "max-credits",
		"device_qubits": "device-qubits",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	for _, exp := range []string{"grover", "bell"} {
		rootCmd.AddCommand(newExperimentCmd(exp, v, opts))
	}
	rootCmd.AddCommand(newBackendsCmd())

	return rootCmd
}
