package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qexp"
)

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the backends each experiment can select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, exp := range qexp.Experiments() {
				fmt.Fprintf(out, "%s: %s\n", exp.Name, strings.Join(exp.Backends.Names(), ", "))
			}
			return nil
		},
	}
}
