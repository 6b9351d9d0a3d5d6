package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nkwon/threeway/internal/cli"
	"github.com/nkwon/threeway/internal/gitmerge"
	"github.com/nkwon/threeway/internal/markers"
)

// CheckResolvedFile reports whether the merged file contains no
// conflict regions and no marker issues. Malformed markers count as
// unresolved to avoid false success.
func CheckResolvedFile(mergedPath string) (bool, error) {
	data, err := os.ReadFile(mergedPath)
	if err != nil {
		return false, fmt.Errorf("read merged: %w", err)
	}
	return markers.IsResolved(data), nil
}

// ApplyAllAndWrite resolves every conflict in the merged file with one
// source, non-interactively, and writes the result back.
//
// The conflict view is regenerated with git merge-file --diff3 so base
// sections are available even when the merged file was produced without
// them. The written output is re-parsed to verify no markers remain.
func ApplyAllAndWrite(ctx context.Context, opts cli.Options) error {
	if opts.ApplyAll == "" {
		return errors.New("internal: ApplyAllAndWrite called without apply mode")
	}
	source, err := ParseSource(opts.ApplyAll)
	if err != nil {
		return err
	}

	mergedBytes, err := os.ReadFile(opts.MergedPath)
	if err != nil {
		return fmt.Errorf("read merged: %w", err)
	}
	mergedDoc := markers.Parse(mergedBytes)
	if err := mergedDoc.IssueErr(); err != nil {
		return err
	}
	if len(mergedDoc.Regions) == 0 {
		// Nothing to resolve; exit 0 without writing.
		return nil
	}

	viewBytes, err := gitmerge.MergeViewDiff3(ctx, opts.LocalPath, opts.BasePath, opts.RemotePath)
	if err != nil {
		return err
	}
	viewDoc := markers.Parse(viewBytes)
	if err := viewDoc.IssueErr(); err != nil {
		return fmt.Errorf("diff3 view: %w", err)
	}
	if len(viewDoc.Regions) == 0 {
		return fmt.Errorf("computed diff3 view has no conflicts but %s contains conflict markers", opts.MergedPath)
	}

	state, err := NewState(viewDoc, 1)
	if err != nil {
		return err
	}
	if err := state.SetAll(source); err != nil {
		return err
	}
	resolved, err := state.Compose(ModeStrict)
	if err != nil {
		return err
	}

	if bytes.Equal(resolved.Text, mergedBytes) {
		// Already matches (unlikely), but keep it safe: don't write.
		return nil
	}

	if opts.Backup {
		bak := opts.MergedPath + ".threeway.bak"
		if err := os.WriteFile(bak, mergedBytes, 0o644); err != nil {
			return fmt.Errorf("write backup %s: %w", filepath.Base(bak), err)
		}
	}

	if err := os.WriteFile(opts.MergedPath, resolved.Text, 0o644); err != nil {
		return fmt.Errorf("write merged: %w", err)
	}

	if !markers.IsResolved(resolved.Text) {
		return errors.New("resolution output still contains conflict markers")
	}
	return nil
}
