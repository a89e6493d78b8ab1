package cli

import (
	"fmt"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a workspace from a JSON or TOML seed file",
		Long: `Import objects, sheets, columns, elements, edges and tabs from a seed file.
Records link to each other through "ref" names; nothing is written unless the
whole file validates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Session.Import == nil {
				return fmt.Errorf("imports are not available in this session")
			}
			stop := func() {}
			if app.Interactive {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Importing "+args[0])
			}
			result, err := app.Session.Import.ImportWorkspace(cmd.Context(), args[0])
			stop()
			if err != nil {
				return err
			}

			summary := formatter.ImportSummary{
				Objects:  result.ObjectCount,
				Elements: result.ElementCount,
				Columns:  result.ColumnCount,
				Edges:    result.EdgeCount,
				Tabs:     result.TabCount,
			}
			for _, o := range result.RootObjects {
				summary.Roots = append(summary.Roots, o.Name)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportSummary(summary))
			return nil
		},
	}
}
