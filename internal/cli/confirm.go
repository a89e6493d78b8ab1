package cli

import (
	"fmt"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// workgridHuhTheme returns a huh theme using the gruvbox palette.
func workgridHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorRed).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func confirmForm(title, description string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(result),
		),
	).WithTheme(workgridHuhTheme()).WithShowHelp(false)
}

// confirmDelete asks before a cascading delete. --yes skips the prompt;
// without a terminal the delete is refused instead of assumed.
func confirmDelete(app *App, yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if !app.Interactive {
		return false, fmt.Errorf("%s: pass --yes to confirm outside a terminal", title)
	}
	var ok bool
	if err := confirmForm(title, description, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
