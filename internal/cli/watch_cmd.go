package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var elements bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-fetch and print the object tree whenever the database changes",
		Long: `Follow the workspace database. Every committed change, from this or any
other workgrid process, reloads the whole workspace and reprints the tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.DBPath == "" {
				return fmt.Errorf("no database file to watch")
			}
			return watchWorkspace(cmd.Context(), app, cmd.OutOrStdout(), elements)
		},
	}

	cmd.Flags().BoolVarP(&elements, "elements", "e", false, "Include elements in the tree")

	return cmd
}

// watchWorkspace prints the tree, then reloads and reprints it on every
// database change until ctx is cancelled.
func watchWorkspace(ctx context.Context, app *App, out io.Writer, elements bool) error {
	w, err := newDBWatcher(app.DBPath)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", app.DBPath, err)
	}
	defer w.Stop()

	render := func() {
		if app.Interactive {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		fmt.Fprintf(out, "%s %s\n\n", formatter.Header("Workspace"), formatter.Dim("watching "+app.DBPath))
		fmt.Fprint(out, formatter.FormatObjectTree(app.Session.Objects.Tree(), elements))
	}
	render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if err := app.Session.Load(ctx); err != nil {
				fmt.Fprintln(out, formatter.StyleRed.Render("reload failed: "+err.Error()))
				continue
			}
			render()
			fmt.Fprintln(out, formatter.Dim("reloaded "+time.Now().Format("15:04:05")))
		}
	}
}
