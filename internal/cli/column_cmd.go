package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/columns"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/spf13/cobra"
)

func newColumnCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"col"},
		Short:   "Manage custom columns and their values",
	}

	cmd.AddCommand(
		newColumnAddCmd(app),
		newColumnListCmd(app),
		newColumnGridCmd(app),
		newColumnRenameCmd(app),
		newColumnTypeCmd(app),
		newColumnVisibilityCmd(app, "hide", false),
		newColumnVisibilityCmd(app, "show", true),
		newColumnMoveCmd(app),
		newColumnRestoreCmd(app),
		newColumnDeleteCmd(app),
		newColumnOptionCmd(app),
		newColumnSetCmd(app),
		newColumnToggleCmd(app),
	)

	return cmd
}

// parseOptions reads "value" or "value=#RRGGBB" entries.
func parseOptions(raw []string) []domain.ColumnOption {
	out := make([]domain.ColumnOption, 0, len(raw))
	for _, r := range raw {
		value, color, _ := strings.Cut(r, "=")
		out = append(out, domain.ColumnOption{Value: strings.TrimSpace(value), Color: strings.TrimSpace(color)})
	}
	return out
}

// runColumn runs an engine mutation as an observed use case.
func runColumn(cmd *cobra.Command, app *App, name string, c *domain.CustomColumn, fn func(ctx context.Context) error) error {
	return app.Session.Run(cmd.Context(), name, map[string]any{"column_id": c.ID}, fn)
}

func newColumnAddCmd(app *App) *cobra.Command {
	var typ, sheet string
	var options []string

	cmd := &cobra.Command{
		Use:   "add OBJECT NAME",
		Short: "Add a column to an object or one of its sheets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			scope, err := scopeFor(app, o, sheet)
			if err != nil {
				return err
			}

			var created *domain.CustomColumn
			err = app.Session.Run(cmd.Context(), "create-column", map[string]any{"object_id": o.ID, "type": typ}, func(ctx context.Context) error {
				var err error
				created, err = app.Session.Columns.CreateColumn(ctx, columns.NewColumn{
					Scope:   scope,
					Name:    args[1],
					Type:    domain.ColumnType(typ),
					Options: parseOptions(options),
				})
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s column %s [%s]\n", created.Type, created.Name, formatter.ShortID(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Column type (text|number|select|multi_select|status|date|person|checkbox|budget|progress|relation|files|...)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Add to this sheet instead of the object")
	cmd.Flags().StringSliceVar(&options, "option", nil, "Option as value or value=#RRGGBB (repeatable)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newColumnListCmd(app *App) *cobra.Command {
	var sheet string
	var all bool

	cmd := &cobra.Command{
		Use:   "list OBJECT",
		Short: "List the columns of an object or sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			scope, err := scopeFor(app, o, sheet)
			if err != nil {
				return err
			}
			cols := app.Session.Columns.ListColumns(scope)
			if all {
				cols = app.Session.Columns.AllColumns(scope)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatColumns(cols))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "List the columns of this sheet")
	cmd.Flags().BoolVar(&all, "all", false, "Include hidden columns")

	return cmd
}

func newColumnGridCmd(app *App) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "grid OBJECT",
		Short: "Show elements against the visible columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			scope, err := scopeFor(app, o, sheet)
			if err != nil {
				return err
			}
			var rows []*domain.Element
			for _, e := range app.Session.Elements.ListByObject(o.ID) {
				if scope.SheetID != nil && (e.SheetID == nil || *e.SheetID != *scope.SheetID) {
					continue
				}
				rows = append(rows, e)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGrid(app.Session.Columns.ListColumns(scope), rows, app.Session.Columns))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Only this sheet's elements and columns")

	return cmd
}

func newColumnRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename COLUMN NAME",
		Short: "Rename a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "rename-column", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.RenameColumn(ctx, c.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed column %s to %s\n", c.Name, updated.Name)
				return nil
			})
		},
	}
}

func newColumnTypeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "type COLUMN TYPE",
		Short: "Change a column's type; stored values are reinterpreted on read",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "change-column-type", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.ChangeType(ctx, c.ID, domain.ColumnType(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Column %s is now %s\n", updated.Name, updated.Type)
				return nil
			})
		},
	}
}

func newColumnVisibilityCmd(app *App, verb string, visible bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " COLUMN",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "set-column-visibility", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.SetVisible(ctx, c.ID, visible)
				if err != nil {
					return err
				}
				state := "hidden"
				if updated.IsVisible {
					state = "visible"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Column %s is %s\n", updated.Name, state)
				return nil
			})
		},
	}
}

func newColumnMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move COLUMN POSITION",
		Short: "Move a column to a position (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			var pos int
			if _, err := fmt.Sscanf(args[1], "%d", &pos); err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			return runColumn(cmd, app, "move-column", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.MoveColumn(ctx, c.ID, pos)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved column %s to position %d\n", updated.Name, updated.Position)
				return nil
			})
		},
	}
}

func newColumnRestoreCmd(app *App) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "restore OBJECT BUILTIN",
		Short: "Restore a built-in column (assignees|priority|status|due_date)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			scope, err := scopeFor(app, o, sheet)
			if err != nil {
				return err
			}
			b, ok := domain.ParseBuiltInType(args[1])
			if !ok {
				return domain.Invalid("builtin", "unknown built-in column %q", args[1])
			}
			return app.Session.Run(cmd.Context(), "restore-builtin-column", map[string]any{"object_id": o.ID, "builtin": string(b)}, func(ctx context.Context) error {
				restored, err := app.Session.Columns.RestoreBuiltIn(ctx, scope, b)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored column %s at position %d\n", restored.Name, restored.Position)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Restore on this sheet")

	return cmd
}

func newColumnDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete COLUMN",
		Short: "Delete a column and its values (built-ins are hidden instead)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			ok, err := confirmDelete(app, yes,
				fmt.Sprintf("Delete column %q?", c.Name),
				fmt.Sprintf("%d stored value(s) go with it.", len(c.Values)))
			if err != nil || !ok {
				return err
			}
			return runColumn(cmd, app, "delete-column", c, func(ctx context.Context) error {
				if err := app.Session.Columns.DeleteColumn(ctx, c.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted column %s\n", c.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newColumnOptionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "Manage the options of select, multi-select and status columns",
	}

	list := &cobra.Command{
		Use:   "list COLUMN",
		Short: "List options, grouped by progress for status columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatOptions(app, c))
			return nil
		},
	}

	var color string
	add := &cobra.Command{
		Use:   "add COLUMN VALUE",
		Short: "Add an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "add-column-option", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.AddOption(ctx, c.ID, args[1], color)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatOptions(app, updated))
				return nil
			})
		},
	}
	add.Flags().StringVar(&color, "color", "", "Color as #RRGGBB (default: next palette color)")

	rename := &cobra.Command{
		Use:   "rename COLUMN OLD NEW",
		Short: "Rename an option; stored values keep the old name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "rename-column-option", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.RenameOption(ctx, c.ID, args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatOptions(app, updated))
				return nil
			})
		},
	}

	recolor := &cobra.Command{
		Use:   "recolor COLUMN VALUE COLOR",
		Short: "Change an option's color",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "recolor-column-option", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.RecolorOption(ctx, c.ID, args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatOptions(app, updated))
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete COLUMN VALUE",
		Short: "Delete an option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveColumn(app, args[0], nil)
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "delete-column-option", c, func(ctx context.Context) error {
				updated, err := app.Session.Columns.DeleteOption(ctx, c.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatOptions(app, updated))
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, rename, recolor, del)
	return cmd
}

func formatOptions(app *App, c *domain.CustomColumn) string {
	if len(c.Options) == 0 {
		return formatter.Dim("No options.") + "\n"
	}
	chips := func(opts []domain.ColumnOption) string {
		parts := make([]string, len(opts))
		for i, o := range opts {
			parts[i] = formatter.Chip(o.Value, app.Session.Columns.OptionColor(c, o.Value))
		}
		return strings.Join(parts, " ")
	}
	if c.Type != domain.ColumnStatus {
		return chips(c.Options) + "\n"
	}
	g := app.Session.Columns.GroupStatusOptions(c)
	var b strings.Builder
	for _, grp := range []struct {
		label string
		opts  []domain.ColumnOption
	}{{"To do", g.Todo}, {"In progress", g.InProgress}, {"Complete", g.Complete}} {
		if len(grp.opts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", formatter.Dim(fmt.Sprintf("%-12s", grp.label)), chips(grp.opts))
	}
	return b.String()
}

// elementScopeColumn resolves a column in the scope an element lives in:
// its sheet first, then its object.
func elementScopeColumn(app *App, e *domain.Element, input string) (*domain.CustomColumn, error) {
	if e.SheetID != nil {
		scope := domain.ColumnScope{ObjectID: e.ObjectID, SheetID: e.SheetID}
		if c, err := resolveColumn(app, input, &scope); err == nil {
			return c, nil
		}
	}
	scope := domain.ColumnScope{ObjectID: e.ObjectID}
	if c, err := resolveColumn(app, input, &scope); err == nil {
		return c, nil
	}
	return resolveColumn(app, input, nil)
}

func newColumnSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set ELEMENT COLUMN VALUE",
		Short: "Set an element's value in a column (comma-separated for lists, empty clears)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			c, err := elementScopeColumn(app, e, args[1])
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "set-column-value", c, func(ctx context.Context) error {
				res, err := app.Session.Columns.SetValue(ctx, c.ID, e.ID, args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s · %s = %s\n", e.Title, c.Name, formatter.FormatValue(c, res.Value, app.Session.Columns))
				if len(res.OutOfSet) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleYellow.Render("not in the option list: "+strings.Join(res.OutOfSet, ", ")))
				}
				return nil
			})
		},
	}
}

func newColumnToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ELEMENT COLUMN",
		Short: "Flip a checkbox value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			c, err := elementScopeColumn(app, e, args[1])
			if err != nil {
				return err
			}
			return runColumn(cmd, app, "toggle-checkbox", c, func(ctx context.Context) error {
				res, err := app.Session.Columns.ToggleCheckbox(ctx, c.ID, e.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s · %s = %s\n", e.Title, c.Name, formatter.FormatValue(c, res.Value, app.Session.Columns))
				return nil
			})
		},
	}
}
