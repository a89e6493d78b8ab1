package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/spf13/cobra"
)

func newSheetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Manage an object's sheets",
	}

	add := &cobra.Command{
		Use:   "add OBJECT NAME",
		Short: "Add a sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Session.Sheets.Create(cmd.Context(), o.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sheet %s [%s] in %s\n", s.Name, formatter.ShortID(s.ID), o.Name)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list OBJECT",
		Short: "List sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSheets(app.Session.Sheets.List(o.ID)))
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete SHEET",
		Short: "Delete a sheet; its elements stay on the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSheet(app, args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDelete(app, yes, fmt.Sprintf("Delete sheet %q?", s.Name), "Its columns are deleted; its elements move back to the object.")
			if err != nil || !ok {
				return err
			}
			if err := app.Session.Sheets.Delete(cmd.Context(), s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted sheet %s\n", s.Name)
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	cmd.AddCommand(add, list, del)
	return cmd
}

func newTabCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tab",
		Short: "Manage an object's view tabs",
	}

	cmd.AddCommand(
		newTabAddCmd(app),
		newTabListCmd(app),
		newTabRenameCmd(app),
		newTabMoveCmd(app),
		newTabDeleteCmd(app),
	)

	return cmd
}

func newTabAddCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "add OBJECT NAME",
		Short: "Add a tab",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Session.Tabs.Create(cmd.Context(), domain.Tab{ObjectID: o.ID, Name: args[1], Kind: domain.TabKind(kind)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s tab %s [%s]\n", t.Kind, t.Name, formatter.ShortID(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.TabElements), "Tab kind (summary|elements|note|gantt|calendar|workers|matrix)")

	return cmd
}

func newTabListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list OBJECT",
		Short: "List tabs in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTabs(app.Session.Tabs.List(o.ID)))
			return nil
		},
	}
}

func newTabRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename TAB NAME",
		Short: "Rename a tab",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTab(app, args[0])
			if err != nil {
				return err
			}
			updated, err := app.Session.Tabs.Update(cmd.Context(), t.ID, domain.TabPatch{Name: domain.StrPtr(args[1])})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed tab %s to %s\n", t.Name, updated.Name)
			return nil
		},
	}
}

func newTabMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move TAB POSITION",
		Short: "Change a tab's order index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTab(app, args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			if _, err := app.Session.Tabs.Update(cmd.Context(), t.ID, domain.TabPatch{OrderIndex: domain.IntPtr(pos)}); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTabs(app.Session.Tabs.List(t.ObjectID)))
			return nil
		},
	}
}

func newTabDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete TAB",
		Short: "Delete a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTab(app, args[0])
			if err != nil {
				return err
			}
			ok, err := confirmDelete(app, yes, fmt.Sprintf("Delete tab %q?", t.Name), "Its view settings are lost.")
			if err != nil || !ok {
				return err
			}
			if err := app.Session.Tabs.Delete(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tab %s\n", t.Name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
