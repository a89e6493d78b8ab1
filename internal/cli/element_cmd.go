package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/spf13/cobra"
)

func newElementCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "element",
		Aliases: []string{"el"},
		Short:   "Manage elements (work items)",
	}

	cmd.AddCommand(
		newElementAddCmd(app),
		newElementListCmd(app),
		newElementShowCmd(app),
		newElementUpdateCmd(app),
		newElementDeleteCmd(app),
		newSubelementCmd(app),
	)

	return cmd
}

// parseAssignees reads "worker" or "worker:role" entries.
func parseAssignees(raw []string) ([]domain.Assignee, error) {
	out := make([]domain.Assignee, 0, len(raw))
	for _, r := range raw {
		worker, role, _ := strings.Cut(r, ":")
		worker = strings.TrimSpace(worker)
		if worker == "" {
			return nil, fmt.Errorf("invalid --assignee %q, expected worker or worker:role", r)
		}
		out = append(out, domain.Assignee{WorkerID: worker, Role: strings.TrimSpace(role)})
	}
	return out, nil
}

// datePatch turns a date flag into a patch; "none" clears the date.
func datePatch(flag, value string) (domain.DatePatch, error) {
	if value == "" || strings.EqualFold(value, "none") {
		return domain.ClearDate(), nil
	}
	d, err := domain.ParseDay(value)
	if err != nil {
		return domain.DatePatch{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return domain.SetDate(d), nil
}

func newElementAddCmd(app *App) *cobra.Command {
	var status, priority, start, due, section, sheet, description string
	var assignees []string

	cmd := &cobra.Command{
		Use:   "add OBJECT TITLE",
		Short: "Create an element in an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}

			e := domain.Element{
				ObjectID:    o.ID,
				Title:       args[1],
				Description: description,
				Status:      domain.ElementStatus(status),
				Priority:    domain.Priority(priority),
			}
			if e.StartDate, err = domain.ParseOptionalDay(start); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if e.DueDate, err = domain.ParseOptionalDay(due); err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			if section != "" {
				e.Section = domain.StrPtr(section)
			}
			if sheet != "" {
				s, err := resolveSheetOf(app, o.ID, sheet)
				if err != nil {
					return err
				}
				e.SheetID = domain.StrPtr(s.ID)
			}
			if e.Assignees, err = parseAssignees(assignees); err != nil {
				return err
			}

			created, err := app.Session.Elements.Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created element %s [%s] in %s\n", created.Title, formatter.ShortID(created.ID), o.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Status (backlog|todo|in_progress|review|done|blocked|cancelled)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&section, "section", "", "Section label")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet of the object to place the element on")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Markdown description")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "Assignee as worker or worker:role (repeatable)")

	return cmd
}

func newElementListCmd(app *App) *cobra.Command {
	var sheet, status string

	cmd := &cobra.Command{
		Use:   "list OBJECT",
		Short: "List the elements of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveObject(app, args[0])
			if err != nil {
				return err
			}
			var sheetID string
			if sheet != "" {
				s, err := resolveSheetOf(app, o.ID, sheet)
				if err != nil {
					return err
				}
				sheetID = s.ID
			}

			var shown []*domain.Element
			for _, e := range app.Session.Elements.ListByObject(o.ID) {
				if sheetID != "" && (e.SheetID == nil || *e.SheetID != sheetID) {
					continue
				}
				if status != "" && string(e.Status) != status {
					continue
				}
				shown = append(shown, e)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatElementList(shown, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Only elements on this sheet")
	cmd.Flags().StringVar(&status, "status", "", "Only elements with this status")

	return cmd
}

func newElementShowCmd(app *App) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "show ELEMENT",
		Short: "Show an element with its description, checklist and links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			detail := formatter.ElementDetail{
				Element:  e,
				Path:     app.Session.Objects.Breadcrumb(e.ObjectID),
				Edges:    app.Session.Edges.EdgesFor(e.ID),
				Blockers: app.Session.Elements.Blockers(e.ID),
				Titles:   elementTitles(app),
				Today:    app.today(),
				Width:    width,
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatElementDetail(detail))
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 80, "Wrap width of the description")

	return cmd
}

// elementTitles resolves element ids to titles for link listings.
func elementTitles(app *App) func(string) string {
	return func(id string) string {
		if e, ok := app.Session.Store.Element(id); ok {
			return e.Title
		}
		return ""
	}
}

func newElementUpdateCmd(app *App) *cobra.Command {
	var title, description, status, priority, start, due, section, sheet string
	var assignees []string

	cmd := &cobra.Command{
		Use:   "update ELEMENT",
		Short: "Update an element; dates accept \"none\" to clear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}

			var patch domain.ElementPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("status") {
				s := domain.ElementStatus(status)
				patch.Status = &s
			}
			if flags.Changed("priority") {
				p := domain.Priority(priority)
				patch.Priority = &p
			}
			if flags.Changed("section") {
				patch.Section = &section
			}
			if flags.Changed("sheet") {
				patch.SheetID = domain.ClearStr()
				if sheet != "" && !strings.EqualFold(sheet, "none") {
					s, err := resolveSheetOf(app, e.ObjectID, sheet)
					if err != nil {
						return err
					}
					patch.SheetID = domain.StrPtr(s.ID)
				}
			}
			if flags.Changed("start") {
				if patch.StartDate, err = datePatch("start", start); err != nil {
					return err
				}
			}
			if flags.Changed("due") {
				if patch.DueDate, err = datePatch("due", due); err != nil {
					return err
				}
			}
			if flags.Changed("assignee") {
				list, err := parseAssignees(assignees)
				if err != nil {
					return err
				}
				patch.Assignees = &list
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}

			updated, err := app.Session.Elements.Update(cmd.Context(), e.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated element %s [%s]\n", updated.Title, formatter.ShortID(updated.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Markdown description")
	cmd.Flags().StringVar(&status, "status", "", "Status")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD or none)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD or none)")
	cmd.Flags().StringVar(&section, "section", "", "Section label (empty clears)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet (none clears)")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "Replace assignees (worker or worker:role)")

	return cmd
}

func newElementDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ELEMENT",
		Short: "Delete an element with its links and column values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			adj := app.Session.Edges.EdgesFor(e.ID)
			ok, err := confirmDelete(app, yes,
				fmt.Sprintf("Delete %q?", e.Title),
				fmt.Sprintf("%d link(s) go with it.", len(adj.Incoming)+len(adj.Outgoing)))
			if err != nil || !ok {
				return err
			}
			if err := app.Session.Elements.Delete(cmd.Context(), e.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted element %s\n", e.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newSubelementCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage an element's checklist",
	}

	add := &cobra.Command{
		Use:   "add ELEMENT TITLE",
		Short: "Append a checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			sub, err := app.Session.Elements.AddSubelement(cmd.Context(), e.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q [%s] to %s\n", sub.Title, formatter.ShortID(sub.ID), e.Title)
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ELEMENT ITEM",
		Short: "Check or uncheck a checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			sub, err := resolveSubelement(e, args[1])
			if err != nil {
				return err
			}
			toggled, err := app.Session.Elements.ToggleSubelement(cmd.Context(), e.ID, sub.ID)
			if err != nil {
				return err
			}
			box := "☐"
			if toggled.IsCompleted {
				box = "☑"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", box, toggled.Title)
			return nil
		},
	}

	cmd.AddCommand(add, toggle)
	return cmd
}
