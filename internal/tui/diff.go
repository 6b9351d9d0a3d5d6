package tui

import (
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// highlightVariants renders the local and incoming variants with
// character-level highlights of what differs between them: deletions
// underlined in the local pane, insertions in the incoming pane.
func highlightVariants(local, incoming string) (string, string) {
	if local == incoming {
		return local, incoming
	}

	d := dmp.New()
	diffs := d.DiffMain(local, incoming, false)
	d.DiffCleanupSemantic(diffs)

	var l, r strings.Builder
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffDelete:
			l.WriteString(styleMultiline(diffDelStyle.Render, df.Text))
		case dmp.DiffInsert:
			r.WriteString(styleMultiline(diffAddStyle.Render, df.Text))
		case dmp.DiffEqual:
			l.WriteString(df.Text)
			r.WriteString(df.Text)
		}
	}
	return l.String(), r.String()
}

// styleMultiline applies a style per line so escape sequences never
// span newlines, which confuses the viewport's line slicing.
func styleMultiline(render func(...string) string, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = render(line)
		}
	}
	return strings.Join(lines, "\n")
}
