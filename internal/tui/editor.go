package tui

import (
	"fmt"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
)

type editorFinishedMsg struct {
	path string
	err  error
}

// openEditorCmd writes the seed text to a temp file and suspends the
// TUI while $VISUAL/$EDITOR edits it. The resulting file content
// becomes the custom resolution for the current conflict.
func openEditorCmd(seed []byte) tea.Cmd {
	f, err := os.CreateTemp("", "threeway-edit-*")
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: fmt.Errorf("create edit temp file: %w", err)}
		}
	}
	path := f.Name()
	if _, err := f.Write(seed); err != nil {
		f.Close()
		os.Remove(path)
		return func() tea.Msg {
			return editorFinishedMsg{err: fmt.Errorf("write edit temp file: %w", err)}
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return func() tea.Msg {
			return editorFinishedMsg{err: fmt.Errorf("close edit temp file: %w", err)}
		}
	}

	cmd := exec.Command(editorCommand(), path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{path: path, err: err}
	})
}

func editorCommand() string {
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}
