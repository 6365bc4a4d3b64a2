package main

import "github.com/spf13/cobra"

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flowctl",
		Short:         "Manage nurturing campaign flows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newNewCmd(app),
		newValidateCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newListCmd(app),
		newPreviewCmd(app),
		newSimulateCmd(app),
		newDiagramCmd(app),
		newMigrateCmd(app),
	)

	return cmd
}
