package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nkwon/threeway/internal/cli"
	"github.com/nkwon/threeway/internal/engine"
	"github.com/nkwon/threeway/internal/gitmerge"
	"github.com/nkwon/threeway/internal/markers"
)

const maxUndoSize = 100

var ErrBackToSelector = errors.New("back to selector")

type pane int

const (
	paneLocal pane = iota
	paneBase
	paneIncoming
)

func (p pane) String() string {
	switch p {
	case paneLocal:
		return "LOCAL"
	case paneBase:
		return "BASE"
	case paneIncoming:
		return "INCOMING"
	}
	return "?"
}

type model struct {
	ctx   context.Context
	opts  cli.Options
	state *engine.State
	doc   markers.Document

	current  int
	selected pane

	vpLocal    viewport.Model
	vpBase     viewport.Model
	vpIncoming viewport.Model
	vpResult   viewport.Model

	ready    bool
	width    int
	height   int
	quitting bool

	toastMessage string
	err          error
}

// Run starts the interactive resolver for one merged file.
func Run(ctx context.Context, opts cli.Options) error {
	if err := ensureThemeLoaded(); err != nil {
		return err
	}

	viewBytes, err := gitmerge.MergeViewDiff3(ctx, opts.LocalPath, opts.BasePath, opts.RemotePath)
	if err != nil {
		return fmt.Errorf("failed to generate diff3 view: %w", err)
	}

	doc := markers.Parse(viewBytes)
	if err := doc.IssueErr(); err != nil {
		return fmt.Errorf("failed to parse conflicts: %w", err)
	}
	if len(doc.Regions) == 0 {
		fmt.Fprintln(os.Stdout, "No conflicts to resolve.")
		return nil
	}

	state, err := engine.NewState(doc, maxUndoSize)
	if err != nil {
		return fmt.Errorf("failed to create state: %w", err)
	}

	// If the merged file was already resolved one-sidedly (e.g. a prior
	// --apply-all run), pre-seed every region with that source.
	if mergedBytes, readErr := os.ReadFile(opts.MergedPath); readErr == nil {
		if source, ok := engine.DetectUniform(doc, mergedBytes); ok {
			if err := state.SetAll(source); err != nil {
				return err
			}
		}
	}

	m := model{
		ctx:   ctx,
		opts:  opts,
		state: state,
		doc:   doc,
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := finalModel.(model); ok {
		return m.err
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refreshPanes()
		return m, nil

	case editorFinishedMsg:
		return m.finishEditor(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.err = ErrBackToSelector
		m.quitting = true
		return m, tea.Quit

	case "n", "tab":
		m.gotoConflict(m.current + 1)
	case "p", "shift+tab":
		m.gotoConflict(m.current - 1)

	case "h", "left":
		m.selectPane(-1)
	case "l", "right":
		m.selectPane(1)

	case "1":
		m.accept(engine.SourceLocal)
	case "2":
		m.accept(engine.SourceBase)
	case "3":
		m.accept(engine.SourceIncoming)
	case "a":
		m.accept(engine.SourceBoth)
	case "enter":
		m.acceptSelectedPane()
	case "d":
		// Drop the block entirely: a custom resolution with no text.
		m.acceptCustom([]byte{})
	case "c":
		if err := m.state.ClearResolution(m.current); err != nil {
			m.toast(err.Error())
		} else {
			m.toast(fmt.Sprintf("conflict %d cleared", m.current+1))
			m.refreshPanes()
		}

	case "e":
		return m, openEditorCmd(m.editorSeed())

	case "u":
		if err := m.state.Undo(); err != nil {
			m.toast(err.Error())
		} else {
			m.toast("undo")
			m.refreshPanes()
		}
	case "r":
		if err := m.state.Redo(); err != nil {
			m.toast(err.Error())
		} else {
			m.toast("redo")
			m.refreshPanes()
		}

	case "y":
		m.yankSelected()

	case "j", "down":
		m.scrollVariants(1)
	case "k", "up":
		m.scrollVariants(-1)
	case "J", "pgdown":
		m.vpResult.LineDown(3)
	case "K", "pgup":
		m.vpResult.LineUp(3)

	case "w":
		return m.write(engine.ModeStrict)
	case "W":
		return m.write(engine.ModePartial)
	}
	return m, nil
}

func (m *model) gotoConflict(index int) {
	if index < 0 || index >= len(m.doc.Regions) {
		return
	}
	m.current = index
	m.refreshPanes()
}

func (m *model) selectPane(delta int) {
	next := int(m.selected) + delta
	// Skip the base pane when the file has no base stage at all.
	if next == int(paneBase) && m.opts.AllowMissingBase {
		next += delta
	}
	if next < int(paneLocal) || next > int(paneIncoming) {
		return
	}
	m.selected = pane(next)
}

func (m *model) accept(source engine.Source) {
	if source == engine.SourceBase && m.opts.AllowMissingBase {
		m.toast("no base stage for this file")
		return
	}
	if err := m.state.SetResolution(m.current, source, nil); err != nil {
		m.toast(err.Error())
		return
	}
	m.toast(fmt.Sprintf("conflict %d → %s", m.current+1, source))
	m.advanceToUnresolved()
	m.refreshPanes()
}

func (m *model) acceptCustom(text []byte) {
	if err := m.state.SetResolution(m.current, engine.SourceCustom, text); err != nil {
		m.toast(err.Error())
		return
	}
	m.toast(fmt.Sprintf("conflict %d → custom", m.current+1))
	m.advanceToUnresolved()
	m.refreshPanes()
}

func (m *model) acceptSelectedPane() {
	switch m.selected {
	case paneLocal:
		m.accept(engine.SourceLocal)
	case paneBase:
		m.accept(engine.SourceBase)
	case paneIncoming:
		m.accept(engine.SourceIncoming)
	}
}

// advanceToUnresolved moves focus to the next unresolved conflict after
// the current one, wrapping around; stays put if everything is resolved.
func (m *model) advanceToUnresolved() {
	n := len(m.doc.Regions)
	for step := 1; step <= n; step++ {
		idx := (m.current + step) % n
		res, err := m.state.Resolution(idx)
		if err == nil && res.Source == engine.SourceNone {
			m.current = idx
			return
		}
	}
}

func (m *model) selectedVariant() ([]byte, bool) {
	region := m.doc.Regions[m.current]
	switch m.selected {
	case paneLocal:
		return region.Local, true
	case paneBase:
		if !region.HasBase || m.opts.AllowMissingBase {
			return nil, false
		}
		return region.Base, true
	case paneIncoming:
		return region.Incoming, true
	}
	return nil, false
}

func (m *model) yankSelected() {
	variant, ok := m.selectedVariant()
	if !ok {
		m.toast("no base section to yank")
		return
	}
	if err := clipboard.WriteAll(string(variant)); err != nil {
		m.toast(fmt.Sprintf("clipboard: %v", err))
		return
	}
	m.toast(fmt.Sprintf("yanked %s", m.selected))
}

// editorSeed is what $EDITOR opens: the current custom text if one is
// set, otherwise the selected pane's variant.
func (m *model) editorSeed() []byte {
	if res, err := m.state.Resolution(m.current); err == nil && res.Source == engine.SourceCustom {
		return res.Custom
	}
	if variant, ok := m.selectedVariant(); ok {
		return variant
	}
	return m.doc.Regions[m.current].Local
}

func (m model) finishEditor(msg editorFinishedMsg) model {
	if msg.path != "" {
		defer os.Remove(msg.path)
	}
	if msg.err != nil {
		m.toast(fmt.Sprintf("editor: %v", msg.err))
		return m
	}
	data, err := os.ReadFile(msg.path)
	if err != nil {
		m.toast(fmt.Sprintf("read edited text: %v", err))
		return m
	}
	m.acceptCustom(data)
	return m
}

func (m model) write(mode engine.Mode) (tea.Model, tea.Cmd) {
	resolved, err := m.state.Compose(mode)
	if err != nil {
		if errors.Is(err, engine.ErrUnresolved) {
			m.toast(fmt.Sprintf("%d unresolved conflicts remain (W writes partial)", len(m.doc.Regions)-m.state.ResolvedCount()))
			return m, nil
		}
		m.err = err
		return m, tea.Quit
	}

	if m.opts.Backup {
		original, readErr := os.ReadFile(m.opts.MergedPath)
		if readErr == nil {
			bak := m.opts.MergedPath + ".threeway.bak"
			if writeErr := os.WriteFile(bak, original, 0o644); writeErr != nil {
				m.err = fmt.Errorf("write backup: %w", writeErr)
				return m, tea.Quit
			}
		}
	}

	if err := os.WriteFile(m.opts.MergedPath, resolved.Text, 0o644); err != nil {
		m.err = fmt.Errorf("write merged: %w", err)
		return m, tea.Quit
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *model) toast(message string) {
	m.toastMessage = message
}

func (m *model) layout() {
	paneOuter := m.width/3 - 2
	if paneOuter < 12 {
		paneOuter = 12
	}
	paneInner := paneOuter - 4

	topH := (m.height - 10) / 2
	if topH < 3 {
		topH = 3
	}
	resultH := m.height - 10 - topH
	if resultH < 3 {
		resultH = 3
	}

	m.vpLocal = viewport.New(paneInner, topH)
	m.vpBase = viewport.New(paneInner, topH)
	m.vpIncoming = viewport.New(paneInner, topH)
	m.vpResult = viewport.New(m.width-6, resultH)
}

func (m *model) scrollVariants(lines int) {
	if lines > 0 {
		m.vpLocal.LineDown(lines)
		m.vpBase.LineDown(lines)
		m.vpIncoming.LineDown(lines)
	} else {
		m.vpLocal.LineUp(-lines)
		m.vpBase.LineUp(-lines)
		m.vpIncoming.LineUp(-lines)
	}
}

func (m *model) refreshPanes() {
	if !m.ready {
		return
	}
	region := m.doc.Regions[m.current]

	localView, incomingView := highlightVariants(string(region.Local), string(region.Incoming))
	m.vpLocal.SetContent(numberLines(localView, region.StartLine+1))
	m.vpIncoming.SetContent(numberLines(incomingView, region.StartLine+1))

	switch {
	case m.opts.AllowMissingBase:
		m.vpBase.SetContent(disabledStyle.Render("(no base stage)"))
	case region.HasBase:
		m.vpBase.SetContent(numberLines(string(region.Base), region.StartLine+1))
	default:
		m.vpBase.SetContent(disabledStyle.Render("(no base section)"))
	}
	m.vpLocal.GotoTop()
	m.vpBase.GotoTop()
	m.vpIncoming.GotoTop()

	// The result pane always shows the partial composition, so an
	// unresolved region appears with its markers intact.
	if resolved, err := m.state.Compose(engine.ModePartial); err == nil {
		m.vpResult.SetContent(string(resolved.Text))
	}
}

// numberLines prefixes each display line with a 1-based line number,
// starting at first.
func numberLines(text string, first int) string {
	if text == "" {
		return disabledStyle.Render("(empty)")
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(lineNumberStyle.Render(fmt.Sprintf("%4d ", first+i)))
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}

	region := m.doc.Regions[m.current]

	header := headerStyle.Render(fmt.Sprintf(
		"%s — conflict %d/%d — %d resolved",
		filepath.Base(m.opts.MergedPath),
		m.current+1, len(m.doc.Regions),
		m.state.ResolvedCount(),
	))

	panes := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderPane(paneLocal, region.LocalLabel, m.vpLocal),
		m.renderPane(paneBase, region.BaseLabel, m.vpBase),
		m.renderPane(paneIncoming, region.IncomingLabel, m.vpIncoming),
	)

	resultBorder := unresolvedPaneStyle
	if m.state.AllResolved() {
		resultBorder = resolvedPaneStyle
	}
	result := resultBorder.Render(titleStyle.Render("RESULT") + "\n" + m.vpResult.View())

	footer := footerStyle.Render(
		"1/2/3 local/base/incoming · enter pane · a both · e edit · d drop · c clear · u/r undo/redo · y yank · n/p conflict · w write · W partial · esc files · q quit",
	)

	rows := []string{header, m.statusLine(), panes, result, footer}
	if m.toastMessage != "" {
		rows = append(rows, toastStyle.Render(m.toastMessage))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m model) renderPane(p pane, label string, vp viewport.Model) string {
	style := paneStyle
	if p == m.selected {
		style = selectedPaneStyle
	}
	title := p.String()
	if label != "" {
		title += " (" + label + ")"
	}
	return style.Render(titleStyle.Render(title) + "\n" + vp.View())
}

// statusLine renders one glyph per conflict: ✓ resolved, · unresolved,
// with the current conflict bracketed.
func (m model) statusLine() string {
	var b strings.Builder
	for _, region := range m.doc.Regions {
		glyph := statusUnresolvedStyle.Render("·")
		if res, err := m.state.Resolution(region.Index); err == nil && res.Source != engine.SourceNone {
			glyph = statusResolvedStyle.Render("✓")
		}
		if region.Index == m.current {
			b.WriteString("[" + glyph + "]")
		} else {
			b.WriteString(" " + glyph + " ")
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
