package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/km-arc/simple-lms/app/content"
	"github.com/km-arc/simple-lms/framework/container"
)

func newContentImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "content:import <catalog.yaml>",
		Short: "Import courses, modules and lessons from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.Errorf("exactly one catalog file is required")
			}

			catalog, err := content.LoadCatalogFromFile(args[0])
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			repo, err := container.Get[*content.Repository](a.Container, container.Key[*content.Repository]())
			if err != nil {
				return err
			}
			created, err := repo.Import(cmd.Context(), catalog)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s content items.\n", humanize.Comma(int64(created)))
			return nil
		},
	}
}
