package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/qexp"
)

func newExperimentCmd(name string, v *viper.Viper, opts *rootOptions) *cobra.Command {
	exp, err := qexp.LookupExperiment(name)
	if err != nil {
		panic(err)
	}

	return &cobra.Command{
		Use:   exp.Name,
		Short: exp.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// reject a bad format before anything is submitted
			if err := checkFormat(opts.format); err != nil {
				return err
			}

			cfg, err := qexp.LoadConfig(v, opts.configFile)
			if err != nil {
				return err
			}

			var jobOpts []qexp.JobOption
			if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
				jobOpts = append(jobOpts, qexp.WithTimeout(timeout))
			}

			runner := qexp.NewRunner(cfg, nil)
			result, err := runner.RunExperiment(cmd.Context(), exp, jobOpts...)
			if err != nil {
				return err
			}

			log.Debug("job metrics", "metrics", runner.Metrics().ExportMetrics())

			out, extra := cmd.OutOrStdout(), cmd.OutOrStdout()
			if structured(opts.format) {
				// keep stdout a single parseable document
				extra = cmd.ErrOrStderr()
			}

			if err := printResult(out, result, opts); err != nil {
				return err
			}

			if opts.histogram {
				fmt.Fprint(extra, result.Histogram(40, isTerminal(extra)))
			}
			if opts.draw {
				fmt.Fprint(extra, exp.Build().Draw())
			}

			return nil
		},
	}
}

func printResult(out io.Writer, result *qexp.Result, opts *rootOptions) error {
	switch opts.format {
	case "json":
		buf, err := result.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(buf))
	case "yaml":
		buf, err := result.YAML()
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(buf))
	case "text", "":
		fmt.Fprintln(out, "Results: ", result)
		fmt.Fprintln(out, result.GetCounts())
		fmt.Fprintln(out, result.GetData())
	default:
		return checkFormat(opts.format)
	}

	return nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "", "json", "yaml":
		return nil
	}
	return &qexp.ConfigError{Field: "format", Err: fmt.Errorf("unknown output format %q", format)}
}

func structured(format string) bool {
	return format == "json" || format == "yaml"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
