package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report consistency warnings and dependency cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var b strings.Builder

			// Building the tree surfaces orphaned and cyclic parents.
			app.Session.Objects.Tree()
			b.WriteString(formatter.FormatDiagnostics(app.Session.Diagnostics()))

			cycles := 0
			for _, t := range []domain.EdgeType{domain.EdgeDependsOn, domain.EdgeMergesInto, domain.EdgeSplitsTo} {
				if id, ok := app.Session.Edges.HasCycle(t); ok {
					cycles++
					b.WriteString(formatter.StyleYellow.Render(fmt.Sprintf("%s links form a cycle through %s", t, titleOrID(app, id))) + "\n")
				}
			}
			if cycles == 0 {
				b.WriteString(formatter.StyleGreen.Render("✔ No dependency cycles.") + "\n")
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Workspace health", strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
}
