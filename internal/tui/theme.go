package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const themeConfigFileName = "theme.json"

// Theme holds the color palette. Every field can be overridden from
// $XDG_CONFIG_HOME/threeway/theme.json; omitted fields keep defaults.
type Theme struct {
	TitleFg            string `json:"title_fg"`
	HeaderBg           string `json:"header_bg"`
	HeaderFg           string `json:"header_fg"`
	FooterBg           string `json:"footer_bg"`
	FooterFg           string `json:"footer_fg"`
	PaneBorder         string `json:"pane_border"`
	SelectedPaneBorder string `json:"selected_pane_border"`
	ResolvedBorder     string `json:"resolved_border"`
	UnresolvedBorder   string `json:"unresolved_border"`
	LineNumberFg       string `json:"line_number_fg"`
	StatusResolvedFg   string `json:"status_resolved_fg"`
	StatusUnresolvedFg string `json:"status_unresolved_fg"`
	DisabledFg         string `json:"disabled_fg"`
	DiffAddFg          string `json:"diff_add_fg"`
	DiffDelFg          string `json:"diff_del_fg"`
	ToastBg            string `json:"toast_bg"`
	ToastFg            string `json:"toast_fg"`
}

func defaultTheme() Theme {
	return Theme{
		TitleFg:            "170",
		HeaderBg:           "62",
		HeaderFg:           "230",
		FooterBg:           "236",
		FooterFg:           "243",
		PaneBorder:         "63",
		SelectedPaneBorder: "205",
		ResolvedBorder:     "42",
		UnresolvedBorder:   "196",
		LineNumberFg:       "241",
		StatusResolvedFg:   "42",
		StatusUnresolvedFg: "196",
		DisabledFg:         "240",
		DiffAddFg:          "114",
		DiffDelFg:          "203",
		ToastBg:            "22",
		ToastFg:            "230",
	}
}

var (
	titleStyle            lipgloss.Style
	headerStyle           lipgloss.Style
	footerStyle           lipgloss.Style
	paneStyle             lipgloss.Style
	selectedPaneStyle     lipgloss.Style
	resolvedPaneStyle     lipgloss.Style
	unresolvedPaneStyle   lipgloss.Style
	lineNumberStyle       lipgloss.Style
	statusResolvedStyle   lipgloss.Style
	statusUnresolvedStyle lipgloss.Style
	disabledStyle         lipgloss.Style
	diffAddStyle          lipgloss.Style
	diffDelStyle          lipgloss.Style
	toastStyle            lipgloss.Style
	resolvedLabelStyle    lipgloss.Style
	unresolvedLabelStyle  lipgloss.Style

	themeOnce sync.Once
	themeErr  error
)

// ensureThemeLoaded builds the package styles once, applying any user
// override file on top of the defaults.
func ensureThemeLoaded() error {
	themeOnce.Do(func() {
		theme := defaultTheme()
		if err := applyThemeFile(&theme); err != nil {
			themeErr = err
			return
		}
		buildStyles(theme)
	})
	return themeErr
}

func applyThemeFile(theme *Theme) error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(configDir, "threeway", themeConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read theme config: %w", err)
	}
	if err := json.Unmarshal(data, theme); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func buildStyles(t Theme) {
	border := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(color)).
			Padding(0, 1)
	}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.TitleFg)).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color(t.HeaderBg)).Foreground(lipgloss.Color(t.HeaderFg)).Padding(0, 2)
	footerStyle = lipgloss.NewStyle().Background(lipgloss.Color(t.FooterBg)).Foreground(lipgloss.Color(t.FooterFg)).Padding(0, 2)
	paneStyle = border(t.PaneBorder)
	selectedPaneStyle = border(t.SelectedPaneBorder)
	resolvedPaneStyle = border(t.ResolvedBorder)
	unresolvedPaneStyle = border(t.UnresolvedBorder)
	lineNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.LineNumberFg))
	statusResolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusResolvedFg)).Bold(true)
	statusUnresolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusUnresolvedFg)).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.DisabledFg))
	diffAddStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.DiffAddFg)).Underline(true)
	diffDelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(t.DiffDelFg)).Underline(true)
	toastStyle = lipgloss.NewStyle().Background(lipgloss.Color(t.ToastBg)).Foreground(lipgloss.Color(t.ToastFg)).Padding(0, 1)
	resolvedLabelStyle = statusResolvedStyle
	unresolvedLabelStyle = statusUnresolvedStyle
}
