package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the registered services and whether they are resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tRESOLVED")
			for _, id := range a.ServiceIDs() {
				fmt.Fprintf(w, "%s\t%t\n", id, a.IsResolved(id))
			}
			return w.Flush()
		},
	}
}
