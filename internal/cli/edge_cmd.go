package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/spf13/cobra"
)

func newEdgeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edge",
		Aliases: []string{"link"},
		Short:   "Manage typed links between elements",
	}

	cmd.AddCommand(
		newEdgeAddCmd(app),
		newEdgeListCmd(app),
		newEdgeDeleteCmd(app),
	)

	return cmd
}

// parseAttrs reads key=value pairs. Numbers and booleans keep their type.
func parseAttrs(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, r := range raw {
		k, v, ok := strings.Cut(r, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected key=value", r)
		}
		out[k] = attrValue(strings.TrimSpace(v))
	}
	return out, nil
}

func attrValue(v string) any {
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func newEdgeAddCmd(app *App) *cobra.Command {
	var typ string
	var attrs []string

	cmd := &cobra.Command{
		Use:   "add FROM TO",
		Short: "Link two elements; with depends_on, TO waits for FROM",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := resolveElement(app, args[0])
			if err != nil {
				return err
			}
			to, err := resolveElement(app, args[1])
			if err != nil {
				return err
			}
			attributes, err := parseAttrs(attrs)
			if err != nil {
				return err
			}

			fields := map[string]any{"from_id": from.ID, "to_id": to.ID, "type": typ}
			return app.Session.Run(cmd.Context(), "create-edge", fields, func(ctx context.Context) error {
				edge, err := app.Session.Edges.CreateEdge(ctx, from.ID, to.ID, domain.EdgeType(typ), attributes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Linked %s %s %s [%s]\n", from.Title, edge.Type, to.Title, formatter.ShortID(edge.ID))
				if id, cyclic := app.Session.Edges.HasCycle(edge.Type); cyclic {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleYellow.Render(
						fmt.Sprintf("note: %s links now form a cycle through %s", edge.Type, titleOrID(app, id))))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(domain.EdgeDependsOn), "Edge type (depends_on|spawns|references|merges_into|splits_to|cancels)")
	cmd.Flags().StringSliceVar(&attrs, "attr", nil, "Attribute as key=value (repeatable)")

	return cmd
}

func titleOrID(app *App, id string) string {
	if t := elementTitles(app)(id); t != "" {
		return t
	}
	return formatter.ShortID(id)
}

func newEdgeListCmd(app *App) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list [ELEMENT]",
		Short: "List links, optionally only those touching an element",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edges []domain.Edge
			if len(args) == 1 {
				e, err := resolveElement(app, args[0])
				if err != nil {
					return err
				}
				adj := app.Session.Edges.EdgesFor(e.ID)
				edges = append(adj.Outgoing, adj.Incoming...)
			} else {
				edges = app.Session.Store.Edges()
			}
			if typ != "" {
				kept := edges[:0]
				for _, e := range edges {
					if string(e.Type) == typ {
						kept = append(kept, e)
					}
				}
				edges = kept
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEdges(edges, func(id string) string { return titleOrID(app, id) }))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Only links of this type")

	return cmd
}

func newEdgeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete EDGE",
		Short: "Remove a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edge, err := resolveEdge(app, args[0])
			if err != nil {
				return err
			}
			return app.Session.Run(cmd.Context(), "delete-edge", map[string]any{"edge_id": edge.ID}, func(ctx context.Context) error {
				if err := app.Session.Edges.DeleteEdge(ctx, edge.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed link %s %s %s\n", titleOrID(app, edge.FromID), edge.Type, titleOrID(app, edge.ToID))
				return nil
			})
		},
	}
}
