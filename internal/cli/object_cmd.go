package cli

import (
	"fmt"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/spf13/cobra"
)

func newObjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "object",
		Aliases: []string{"obj"},
		Short:   "Manage the object hierarchy",
	}

	cmd.AddCommand(
		newObjectAddCmd(app),
		newObjectListCmd(app),
		newObjectShowCmd(app),
		newObjectRenameCmd(app),
		newObjectColorCmd(app),
		newObjectMoveCmd(app),
		newObjectDeleteCmd(app),
	)

	return cmd
}

func newObjectAddCmd(app *App) *cobra.Command {
	var parent, color string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := domain.Object{Name: args[0], Color: color}
			if parent != "" {
				p, err := resolveObject(app, parent)
				if err != nil {
					return err
				}
				o.ParentID = domain.StrPtr(p.ID)
				o.OrderIndex = domain.IntPtr(childCount(app, p.ID))
			}

			created, err := app.Session.Objects.Create(cmd.Context(), o)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created object %s [%s]\n", created.Name, formatter.ShortID(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent object (ID, ID prefix or name)")
	cmd.Flags().StringVar(&color, "color", "", "Color as #RRGGBB")

	return cmd
}

func newObjectListCmd(app *App) *cobra.Command {
	var elements bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the object tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatObjectTree(app.Session.Objects.Tree(), elements))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&elements, "elements", "e", false, "Include elements under each object")

	return cmd
}

func newObjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show OBJECT",
		Short: "Show an object with its sheets, tabs and elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, formatter.FormatBreadcrumb(app.Session.Objects.Breadcrumb(o.ID)))
			fmt.Fprintf(out, "%s %s  %s\n\n", formatter.Swatch(o.Color), formatter.Bold(o.Name), formatter.Dim(o.ID))

			fmt.Fprintln(out, formatter.Header("Sheets"))
			fmt.Fprintln(out, formatter.FormatSheets(app.Session.Sheets.List(o.ID)))
			fmt.Fprintln(out, formatter.Header("Tabs"))
			fmt.Fprintln(out, formatter.FormatTabs(app.Session.Tabs.List(o.ID)))
			fmt.Fprintln(out, formatter.Header("Elements"))
			fmt.Fprint(out, formatter.FormatElementList(app.Session.Elements.ListByObject(o.ID), app.today()))
			return nil
		},
	}
}

func newObjectRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename OBJECT NAME",
		Short: "Rename an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			updated, err := app.Session.Objects.Update(cmd.Context(), o.ID, domain.ObjectPatch{Name: domain.StrPtr(args[1])})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed object %s to %s\n", formatter.ShortID(o.ID), updated.Name)
			return nil
		},
	}
}

func newObjectColorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "color OBJECT HEX",
		Short: "Recolor an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			updated, err := app.Session.Objects.Update(cmd.Context(), o.ID, domain.ObjectPatch{Color: domain.StrPtr(args[1])})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Swatch(updated.Color), updated.Name)
			return nil
		},
	}
}

func newObjectMoveCmd(app *App) *cobra.Command {
	var parent string
	var root bool
	var order int

	cmd := &cobra.Command{
		Use:   "move OBJECT",
		Short: "Reparent or reorder an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}

			var patch domain.ObjectPatch
			switch {
			case root && parent != "":
				return fmt.Errorf("--root and --parent are mutually exclusive")
			case root:
				patch.ParentID = domain.ClearStr()
			case parent != "":
				p, err := resolveObject(app, parent)
				if err != nil {
					return err
				}
				patch.ParentID = domain.StrPtr(p.ID)
			}
			if cmd.Flags().Changed("order") {
				patch.OrderIndex = domain.IntPtr(order)
			}
			if patch.ParentID == nil && patch.OrderIndex == nil {
				return fmt.Errorf("nothing to do: pass --parent, --root or --order")
			}

			if _, err := app.Session.Objects.Update(cmd.Context(), o.ID, patch); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBreadcrumb(app.Session.Objects.Breadcrumb(o.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "New parent object")
	cmd.Flags().BoolVar(&root, "root", false, "Move to the top level")
	cmd.Flags().IntVar(&order, "order", 0, "Position among siblings")

	return cmd
}

func newObjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete OBJECT",
		Short: "Delete an object with everything nested under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			subtree, err := app.Session.Objects.Subtree(o.ID)
			if err != nil {
				return err
			}
			elements := 0
			for _, s := range subtree {
				elements += len(app.Session.Elements.ListByObject(s.ID))
			}

			ok, err := confirmDelete(app, yes,
				fmt.Sprintf("Delete %q?", o.Name),
				fmt.Sprintf("%d nested object(s) and %d element(s) go with it.", len(subtree)-1, elements))
			if err != nil || !ok {
				return err
			}

			if err := app.Session.Objects.Delete(cmd.Context(), o.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted object %s (%d objects, %d elements)\n", o.Name, len(subtree), elements)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func childCount(app *App, parentID string) int {
	n := 0
	for _, o := range app.Session.Store.Objects() {
		if o.ParentID != nil && *o.ParentID == parentID {
			n++
		}
	}
	return n
}
