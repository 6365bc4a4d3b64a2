package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/segal-development/nurtureflow/internal/graph"
	"github.com/segal-development/nurtureflow/internal/mapper"
)

func newNewCmd(app *App) *cobra.Command {
	var name, description, originID, originName, out string
	var prospects, stages int

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Scaffold a new flow definition",
		Long:  "Creates a seeded flow (initial and end node) with the given number of empty stages and writes the definition as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := graph.New()
			b.SetName(name)
			b.SetDescription(description)

			if originID != "" {
				if err := b.InitializeWithOrigin(originID, originName, prospects); err != nil {
					return err
				}
			}
			for i := 0; i < stages; i++ {
				b.AddStageNode()
			}

			def := mapper.ToDefinition(b)
			data, err := json.MarshalIndent(def, "", "  ")
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			app.logger.Info("flow scaffolded", "name", name, "stages", stages, "file", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "untitled-flow", "Flow name")
	cmd.Flags().StringVar(&description, "description", "", "Flow description")
	cmd.Flags().StringVar(&originID, "origin-id", "", "Prospect origin ID to seed the initial node")
	cmd.Flags().StringVar(&originName, "origin-name", "", "Prospect origin display name")
	cmd.Flags().IntVar(&prospects, "prospects", 0, "Prospect count of the origin")
	cmd.Flags().IntVar(&stages, "stages", 0, "Number of empty stages to add")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
