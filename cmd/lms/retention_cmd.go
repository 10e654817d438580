package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/km-arc/simple-lms/app/lms"
	"github.com/km-arc/simple-lms/framework/container"
)

func newRetentionCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "retention:cleanup",
		Short: "Delete analytics events older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Call(lms.RetentionID, "Run", container.Args{
				"ctx":  cmd.Context(),
				"days": days,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s analytics events.\n", humanize.Comma(out[0].(int64)))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention period in days (default: the retention_days setting)")
	return cmd
}
