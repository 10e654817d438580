package main

import (
	"github.com/spf13/cobra"

	"github.com/km-arc/simple-lms/app/lms"
	"github.com/km-arc/simple-lms/framework/app"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lms",
		Short:         "simple-lms plugin host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSlice("env-file", nil, "env files to load (default .env)")

	cmd.AddCommand(
		newServeCmd(),
		newRetentionCleanupCmd(),
		newContentImportCmd(),
		newServicesCmd(),
	)
	return cmd
}

// bootstrap builds and boots the application with the LMS provider. The
// caller must Close it.
func bootstrap(cmd *cobra.Command) (*app.Application, error) {
	envFiles, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}

	a, err := app.New(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := a.Register(&lms.Provider{}); err != nil {
		return nil, err
	}
	if err := a.Boot(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
