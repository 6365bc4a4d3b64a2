package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/segal-development/nurtureflow/internal/diagram"
	"github.com/segal-development/nurtureflow/internal/scheduler"
	"github.com/segal-development/nurtureflow/pkg/schema"
)

// loadDefinition resolves a flow definition either from a file (--file) or
// from the store by flow ID.
func loadDefinition(ctx context.Context, app *App, file, flowID string) (*schema.FlowDefinition, error) {
	if file != "" {
		return readDefinitionFile(file)
	}
	if flowID == "" {
		return nil, fmt.Errorf("a flow ID argument or --file is required")
	}

	st, err := openMigratedStore(ctx, app)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	rec, err := st.GetFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return &rec.Definition, nil
}

func newPreviewCmd(app *App) *cobra.Command {
	var file, enrolledAt string

	cmd := &cobra.Command{
		Use:   "preview [flow-id]",
		Short: "Preview the send timeline for an enrollment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flowID := ""
			if len(args) > 0 {
				flowID = args[0]
			}
			def, err := loadDefinition(cmd.Context(), app, file, flowID)
			if err != nil {
				return err
			}

			enrolled := time.Now().UTC()
			if enrolledAt != "" {
				enrolled, err = time.Parse("2006-01-02", enrolledAt)
				if err != nil {
					return fmt.Errorf("parse --enrolled-at: %w", err)
				}
			}

			plan, err := scheduler.Timeline(*def, enrolled)
			if err != nil {
				return err
			}
			if len(plan) == 0 {
				fmt.Println("no active stages")
				return nil
			}

			fmt.Printf("enrollment at %s\n", enrolled.Format("2006-01-02"))
			for _, send := range plan {
				fmt.Printf("  %s  %-24s  %-8s  (%s)\n",
					send.SendAt.Format("2006-01-02"), send.Label, send.Channel, send.StageID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the definition from a file instead of the store")
	cmd.Flags().StringVar(&enrolledAt, "enrolled-at", "", "Enrollment date (YYYY-MM-DD, default today)")

	return cmd
}

func newDiagramCmd(app *App) *cobra.Command {
	var file, format, out string

	cmd := &cobra.Command{
		Use:   "diagram [flow-id]",
		Short: "Render a flow as a Mermaid flowchart or PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flowID := ""
			if len(args) > 0 {
				flowID = args[0]
			}
			def, err := loadDefinition(cmd.Context(), app, file, flowID)
			if err != nil {
				return err
			}

			model := diagram.Build(*def)

			switch format {
			case "mermaid":
				rendered := diagram.RenderMermaid(model)
				if out == "" {
					fmt.Print(rendered)
					return nil
				}
				return os.WriteFile(out, []byte(rendered), 0o644)
			case "png":
				if out == "" {
					return fmt.Errorf("--output is required for png")
				}
				png, err := diagram.RenderImage(model)
				if err != nil {
					return err
				}
				return os.WriteFile(out, png, 0o644)
			default:
				return fmt.Errorf("unknown format %q (mermaid, png)", format)
			}
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the definition from a file instead of the store")
	cmd.Flags().StringVar(&format, "format", "mermaid", "Output format: mermaid or png")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
