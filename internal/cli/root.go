package cli

import (
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/service"
	"github.com/spf13/cobra"
)

// ConfigFlag names the persistent flag selecting the config file.
const ConfigFlag = "config"

// App holds what CLI commands need: the loaded workspace session and a few
// facts about the terminal it runs in.
type App struct {
	Session *service.Session

	// Interactive is true when stdin and stdout are terminals. Confirmation
	// prompts, spinners and the timeline view only run when it is.
	Interactive bool

	// DBPath is the database file the watch command follows.
	DBPath string

	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// today is the calendar day risk and overdue markers are computed against.
func (a *App) today() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return domain.CalendarDay(now())
}

// NewRootCmd creates the top-level "workgrid" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "workgrid",
		Short:         "Objects, elements and timelines in one workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Read by main before the session exists; declared here so cobra
	// accepts it anywhere on the command line.
	root.PersistentFlags().String(ConfigFlag, "", "Config file (default: $WORKGRID_CONFIG_DIR or ~/.config/workgrid/workgrid.yaml)")

	root.AddCommand(
		newObjectCmd(app),
		newElementCmd(app),
		newColumnCmd(app),
		newEdgeCmd(app),
		newSheetCmd(app),
		newTabCmd(app),
		newGanttCmd(app),
		newMatrixCmd(app),
		newImportCmd(app),
		newWatchCmd(app),
		newDoctorCmd(app),
	)

	return root
}
