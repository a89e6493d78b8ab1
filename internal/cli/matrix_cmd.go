package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/matrix"
	"github.com/spf13/cobra"
)

func newMatrixCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Cross elements of two objects in a matrix tab",
	}

	cmd.AddCommand(
		newMatrixConfigureCmd(app),
		newMatrixShowCmd(app),
		newMatrixSetCmd(app),
	)

	return cmd
}

func newMatrixConfigureCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "configure TAB SOURCE_OBJECT",
		Short: "Choose the object whose elements become the matrix columns",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTab(app, args[0])
			if err != nil {
				return err
			}
			src, err := resolveObject(app, args[1])
			if err != nil {
				return err
			}
			fields := map[string]any{"tab_id": t.ID, "source_object_id": src.ID}
			return app.Session.Run(cmd.Context(), "configure-matrix", fields, func(ctx context.Context) error {
				if _, err := app.Session.Matrix.Configure(ctx, t.ID, src.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Matrix %s now crosses with %s\n", t.Name, src.Name)
				return nil
			})
		},
	}
}

func newMatrixShowCmd(app *App) *cobra.Command {
	var attr string

	cmd := &cobra.Command{
		Use:   "show TAB",
		Short: "Print the matrix grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTab(app, args[0])
			if err != nil {
				return err
			}
			v, err := app.Session.Matrix.View(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMatrix(v, attr))
			return nil
		},
	}

	cmd.Flags().StringVar(&attr, "attr", "", "Show only this cell attribute")

	return cmd
}

func newMatrixSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set ROW_ELEMENT COL_ELEMENT KEY=VALUE...",
		Short: "Merge attributes into a cell; KEY= removes a key",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			col, err := resolveElement(app, args[1])
			if err != nil {
				return err
			}
			patch, err := parseAttrs(args[2:])
			if err != nil {
				return err
			}

			fields := map[string]any{"row_id": row.ID, "col_id": col.ID}
			return app.Session.Run(cmd.Context(), "set-matrix-cell", fields, func(ctx context.Context) error {
				cell, err := app.Session.Matrix.SetCell(ctx, row.ID, col.ID, patch)
				if err != nil {
					return err
				}
				v := matrix.View{
					Configured: true,
					Rows:       []*domain.Element{row},
					Columns:    []*domain.Element{col},
					Cells:      map[matrix.CellKey]matrix.CellData{{RowID: row.ID, ColID: col.ID}: cell},
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMatrix(v, ""))
				return nil
			})
		},
	}
}
