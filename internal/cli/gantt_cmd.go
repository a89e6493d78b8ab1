package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/gantt"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newGanttCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gantt",
		Aliases: []string{"timeline"},
		Short:   "Show and edit an object's timeline",
	}

	cmd.AddCommand(
		newGanttShowCmd(app),
		newGanttShiftCmd(app),
		newGanttTUICmd(app),
	)

	return cmd
}

// applyZoom switches the session's zoom when the flag was given.
func applyZoom(app *App, zoom string) error {
	if zoom == "" {
		return nil
	}
	z, err := gantt.ParseZoom(zoom)
	if err != nil {
		return err
	}
	return app.Session.Gantt.SetZoom(z)
}

func newGanttShowCmd(app *App) *cobra.Command {
	var zoom string
	var width int

	cmd := &cobra.Command{
		Use:   "show OBJECT",
		Short: "Print the timeline of an object's elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			if err := applyZoom(app, zoom); err != nil {
				return err
			}
			chart := app.Session.Gantt.Chart(o.ID, app.today())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGantt(chart, formatter.GanttOptions{MaxWidth: width}))
			return nil
		},
	}

	cmd.Flags().StringVar(&zoom, "zoom", "", "Zoom level (day|week|month); default from config")
	cmd.Flags().IntVar(&width, "width", 0, "Clip the timeline to this many cells")

	return cmd
}

// shiftElement moves or resizes an element by whole days as one observed
// use case.
func shiftElement(ctx context.Context, app *App, elementID string, kind gantt.DragKind, days int) (gantt.Drop, error) {
	var drop gantt.Drop
	fields := map[string]any{"element_id": elementID, "kind": string(kind), "days": days}
	err := app.Session.Run(ctx, "shift-element", fields, func(ctx context.Context) error {
		var err error
		drop, err = app.Session.Gantt.Shift(ctx, elementID, kind, days)
		return err
	})
	return drop, err
}

func newGanttShiftCmd(app *App) *cobra.Command {
	var kind string
	var days int

	cmd := &cobra.Command{
		Use:   "shift ELEMENT --days N",
		Short: "Move or resize an element's bar by whole days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			k, err := gantt.ParseDragKind(kind)
			if err != nil {
				return err
			}
			drop, err := shiftElement(cmd.Context(), app, e.ID, k, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", e.Title, dropSummary(drop))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(gantt.DragMove), "move|resize-start|resize-end")
	cmd.Flags().IntVar(&days, "days", 0, "Days to shift (negative moves earlier)")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func newGanttTUICmd(app *App) *cobra.Command {
	var zoom string

	cmd := &cobra.Command{
		Use:   "tui OBJECT",
		Short: "Open the interactive timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Interactive {
				return fmt.Errorf("the interactive timeline needs a terminal; use 'workgrid gantt show'")
			}
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			if err := applyZoom(app, zoom); err != nil {
				return err
			}
			p := tea.NewProgram(newGanttModel(cmd.Context(), app, o.ID), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&zoom, "zoom", "", "Initial zoom level (day|week|month)")

	return cmd
}
