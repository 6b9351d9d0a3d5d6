package gitmerge

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestMergeViewDiff3Conflict(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	base := writeFile(t, dir, "base", "a\nb\nc\n")
	local := writeFile(t, dir, "local", "a\nL\nc\n")
	remote := writeFile(t, dir, "remote", "a\nR\nc\n")

	out, err := MergeViewDiff3(context.Background(), local, base, remote)
	if err != nil {
		t.Fatal(err)
	}

	// diff3 style carries a base section.
	for _, marker := range []string{"<<<<<<<", "|||||||", "=======", ">>>>>>>"} {
		if !bytes.Contains(out, []byte(marker)) {
			t.Errorf("output missing %s marker:\n%s", marker, out)
		}
	}
}

func TestMergeViewDiff3CleanMerge(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	base := writeFile(t, dir, "base", "a\nb\nc\n")
	local := writeFile(t, dir, "local", "a\nL\nc\n")
	remote := writeFile(t, dir, "remote", "a\nb\nc\nd\n")

	out, err := MergeViewDiff3(context.Background(), local, base, remote)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(out, []byte("<<<<<<<")) {
		t.Errorf("clean merge must have no markers:\n%s", out)
	}
	if !bytes.Contains(out, []byte("L")) || !bytes.Contains(out, []byte("d")) {
		t.Errorf("clean merge should contain both edits:\n%s", out)
	}
}

func TestMergeViewDiff3MissingFile(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	base := writeFile(t, dir, "base", "a\n")

	_, err := MergeViewDiff3(context.Background(), filepath.Join(dir, "nope"), base, base)
	if err == nil {
		t.Error("expected error for missing input file")
	}
}
