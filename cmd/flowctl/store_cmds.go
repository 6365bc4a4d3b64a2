package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/segal-development/nurtureflow/internal/logging"
	"github.com/segal-development/nurtureflow/internal/store"
	"github.com/segal-development/nurtureflow/internal/validation"
	"github.com/segal-development/nurtureflow/pkg/schema"
)

// openMigratedStore opens the configured store and applies pending migrations.
func openMigratedStore(ctx context.Context, app *App) (store.Store, error) {
	st, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func newImportCmd(app *App) *cobra.Command {
	var id, name string
	var activate, skipValidation bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate and persist a flow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, err := readDefinitionFile(args[0])
			if err != nil {
				return err
			}

			if !skipValidation {
				validator, err := validation.NewFlowValidator()
				if err != nil {
					return err
				}
				if err := validator.ValidateDefinition(def); err != nil {
					return err
				}
			}

			if id == "" {
				id = uuid.New().String()
			}
			if name == "" {
				name = def.Name
			}
			status := schema.FlowDraft
			if activate {
				status = schema.FlowActive
			}

			st, err := openMigratedStore(ctx, app)
			if err != nil {
				return err
			}
			defer st.Close()

			rec := &store.FlowRecord{
				ID:          id,
				Name:        name,
				Description: def.Description,
				Definition:  *def,
				Status:      status,
			}
			if err := st.CreateFlow(ctx, rec); err != nil {
				return err
			}

			ctx = logging.WithFlowID(ctx, id)
			app.logger.InfoContext(ctx, "flow imported", "name", name, "status", string(status))
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Flow ID (default: new UUID)")
	cmd.Flags().StringVar(&name, "name", "", "Flow name (default: definition name)")
	cmd.Flags().BoolVar(&activate, "activate", false, "Import as active instead of draft")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip the validation pipeline")

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string
	var full bool

	cmd := &cobra.Command{
		Use:   "export <flow-id>",
		Short: "Export a flow definition as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openMigratedStore(ctx, app)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.GetFlow(ctx, args[0])
			if err != nil {
				return err
			}

			var payload any = rec.Definition
			if full {
				payload = rec
			}
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Println(string(data))
				return nil
			}
			return os.WriteFile(out, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&full, "full", false, "Export the full record including lifecycle metadata")

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var statusFlag, origin string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openMigratedStore(ctx, app)
			if err != nil {
				return err
			}
			defer st.Close()

			filter := store.FlowFilter{OriginID: origin, Limit: limit}
			if statusFlag != "" {
				s := schema.FlowStatus(statusFlag)
				filter.Status = &s
			}

			flows, err := st.ListFlows(ctx, filter)
			if err != nil {
				return err
			}

			if len(flows) == 0 {
				fmt.Println("no flows")
				return nil
			}
			fmt.Printf("%-36s  %-24s  %-8s  %6s  %s\n", "ID", "NAME", "STATUS", "STAGES", "UPDATED")
			for _, f := range flows {
				fmt.Printf("%-36s  %-24s  %-8s  %6d  %s\n",
					f.ID, f.Name, f.Status, len(f.Definition.Stages),
					f.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (draft, active, archived)")
	cmd.Flags().StringVar(&origin, "origin", "", "Filter by prospect origin ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of flows to list")

	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	var vacuum bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending store migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openMigratedStore(ctx, app)
			if err != nil {
				return err
			}
			defer st.Close()

			if vacuum {
				if err := st.Vacuum(ctx); err != nil {
					return err
				}
			}
			app.logger.Info("store migrated", "vacuum", vacuum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "Run VACUUM after migrating")

	return cmd
}
