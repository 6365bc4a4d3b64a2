package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/segal-development/nurtureflow/internal/metrics"
	"github.com/segal-development/nurtureflow/internal/predicate"
)

func newSimulateCmd(app *App) *cobra.Command {
	var file, eventsFile, metricsJSON string

	cmd := &cobra.Command{
		Use:   "simulate [flow-id]",
		Short: "Evaluate every condition against engagement data",
		Long:  "Folds a webhook event stream (or an inline counter map) into engagement metrics and reports which branch each condition in the flow would take.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flowID := ""
			if len(args) > 0 {
				flowID = args[0]
			}
			def, err := loadDefinition(ctx, app, file, flowID)
			if err != nil {
				return err
			}
			if len(def.Conditions) == 0 {
				fmt.Println("no conditions")
				return nil
			}

			counters := map[string]any{}
			switch {
			case eventsFile != "":
				data, err := os.ReadFile(eventsFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", eventsFile, err)
				}
				var events []map[string]any
				if err := json.Unmarshal(data, &events); err != nil {
					return fmt.Errorf("parse %s: %w", eventsFile, err)
				}
				counters, err = metrics.NewExtractor().Accumulate(ctx, events)
				if err != nil {
					return err
				}
			case metricsJSON != "":
				if err := json.Unmarshal([]byte(metricsJSON), &counters); err != nil {
					return fmt.Errorf("parse --metrics: %w", err)
				}
			}

			evaluator, err := predicate.NewEvaluator()
			if err != nil {
				return err
			}

			for _, cond := range def.Conditions {
				taken, err := evaluator.EvaluateCondition(ctx, cond, counters,
					map[string]any{}, map[string]any{})
				if err != nil {
					return err
				}
				branch := "no"
				if taken {
					branch = "yes"
				}
				label := cond.Label
				if label == "" {
					label = string(cond.ConditionType)
				}
				fmt.Printf("  %-28s  %-4s  (%s)\n", label, branch, cond.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the definition from a file instead of the store")
	cmd.Flags().StringVar(&eventsFile, "events", "", "JSON file with an array of webhook events")
	cmd.Flags().StringVar(&metricsJSON, "metrics", "", `Inline counter map, e.g. '{"Views": 2}'`)

	return cmd
}
