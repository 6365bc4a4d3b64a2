package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/segal-development/nurtureflow/internal/validation"
	"github.com/segal-development/nurtureflow/pkg/schema"
)

func newValidateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a flow definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := readDefinitionFile(args[0])
			if err != nil {
				return err
			}

			validator, err := validation.NewFlowValidator()
			if err != nil {
				return err
			}
			result := validator.Validate(def)

			for _, w := range result.Warnings {
				fmt.Printf("warning  %-28s %s\n", w.Path, w.Message)
			}
			for _, e := range result.Errors {
				fmt.Printf("error    %-28s %s\n", e.Path, e.Message)
			}

			if !result.Valid() {
				return fmt.Errorf("%d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
			}
			fmt.Printf("OK: %d stage(s), %d condition(s), %d warning(s)\n",
				len(def.Stages), len(def.Conditions), len(result.Warnings))
			return nil
		},
	}
	return cmd
}

// readDefinitionFile loads and unmarshals a flow definition JSON file.
func readDefinitionFile(path string) (*schema.FlowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var def schema.FlowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &def, nil
}
