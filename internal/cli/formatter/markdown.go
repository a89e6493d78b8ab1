package formatter

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// EnvMarkdownStyle forces the description renderer to "dark", "light" or
// "notty" (plain text).
const EnvMarkdownStyle = "WORKGRID_MD_STYLE"

var (
	mdMu sync.Mutex
	// Renderers keyed by style and wrap width. Auto style detection queries
	// the terminal and can block, so a fixed style is resolved once per key.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders an element description for the terminal. Any
// renderer failure falls back to the raw text.
func RenderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	width = max(width, 20)

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdMu.Lock()
	r, ok := mdRenderers[key]
	if !ok {
		cfg := styleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		var err error
		r, err = glamour.NewTermRenderer(glamour.WithStyles(cfg), glamour.WithWordWrap(width))
		if err != nil {
			mdMu.Unlock()
			return md
		}
		mdRenderers[key] = r
	}
	mdMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func styleConfig(name string) ansi.StyleConfig {
	switch name {
	case styles.LightStyle:
		return styles.LightStyleConfig
	case styles.NoTTYStyle:
		return styles.NoTTYStyleConfig
	default:
		cfg := styles.DarkStyleConfig
		heading := string(ColorHeader)
		cfg.H1.Color = &heading
		cfg.H2.Color = &heading
		return cfg
	}
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvMarkdownStyle))) {
	case "light":
		return styles.LightStyle
	case "notty", "plain":
		return styles.NoTTYStyle
	}
	return styles.DarkStyle
}
