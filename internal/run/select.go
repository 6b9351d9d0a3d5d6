package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nkwon/threeway/internal/cli"
	"github.com/nkwon/threeway/internal/gitutil"
	"github.com/nkwon/threeway/internal/markers"
	"github.com/nkwon/threeway/internal/tui"
)

var errNoConflicts = errors.New("no conflicted files found")

func prepareInteractiveFromRepo(ctx context.Context, opts *cli.Options) (func(), error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	repoRoot, err := gitutil.RepoRoot(ctx, cwd)
	if err != nil {
		return nil, err
	}

	scope, err := filepath.Rel(repoRoot, cwd)
	if err != nil {
		scope = "."
	}
	scope = filepath.ToSlash(scope)

	paths, err := gitutil.ListUnmergedFiles(ctx, repoRoot, scope)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errNoConflicts
	}

	selected, err := selectPathInteractive(ctx, repoRoot, paths)
	if err != nil {
		return nil, err
	}

	mergedPath := selected
	if !filepath.IsAbs(mergedPath) {
		mergedPath = filepath.Join(repoRoot, selected)
	}
	if _, err := os.Stat(mergedPath); err != nil {
		return nil, fmt.Errorf("cannot access merged file %s: %w", selected, err)
	}

	localBytes, err := gitutil.ShowStage(ctx, repoRoot, 2, selected)
	if err != nil {
		return nil, fmt.Errorf("missing local stage for %s: %w", selected, err)
	}
	remoteBytes, err := gitutil.ShowStage(ctx, repoRoot, 3, selected)
	if err != nil {
		return nil, fmt.Errorf("missing incoming stage for %s: %w", selected, err)
	}

	baseBytes, err := gitutil.ShowStage(ctx, repoRoot, 1, selected)
	allowMissingBase := false
	if err != nil {
		// Add/add conflicts have no stage 1. Proceed two-way.
		allowMissingBase = true
		baseBytes = nil
		fmt.Fprintf(os.Stderr, "Warning: base stage missing for %s; continuing without base view.\n", selected)
	}

	basePath, localPath, remotePath, cleanup, err := writeTempStages(baseBytes, localBytes, remoteBytes)
	if err != nil {
		return nil, err
	}

	opts.BasePath = basePath
	opts.LocalPath = localPath
	opts.RemotePath = remotePath
	opts.MergedPath = mergedPath
	opts.AllowMissingBase = allowMissingBase

	return cleanup, nil
}

func selectPathInteractive(ctx context.Context, repoRoot string, paths []string) (string, error) {
	if isInteractiveTTY() {
		candidates, err := buildFileCandidates(repoRoot, paths)
		if err != nil {
			return "", err
		}
		return tui.SelectFile(ctx, candidates)
	}
	return selectPath(paths)
}

func selectPath(paths []string) (string, error) {
	if len(paths) == 1 {
		return paths[0], nil
	}

	fmt.Fprintln(os.Stdout, "Conflicted files:")
	for i, p := range paths {
		fmt.Fprintf(os.Stdout, "  %d) %s\n", i+1, p)
	}

	reader := bufio.NewReader(os.Stdin)
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(os.Stdout, "Select a file to resolve [1-%d]: ", len(paths))
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(paths) {
			fmt.Fprintln(os.Stdout, "Invalid selection.")
			continue
		}
		return paths[idx-1], nil
	}

	return "", fmt.Errorf("invalid selection")
}

func isInteractiveTTY() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// buildFileCandidates annotates each conflicted path with its current
// region/issue counts for the selector list.
func buildFileCandidates(repoRoot string, paths []string) ([]tui.FileCandidate, error) {
	candidates := make([]tui.FileCandidate, 0, len(paths))
	for _, path := range paths {
		mergedPath := path
		if !filepath.IsAbs(mergedPath) {
			mergedPath = filepath.Join(repoRoot, path)
		}
		data, err := os.ReadFile(mergedPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc := markers.Parse(data)
		candidates = append(candidates, tui.FileCandidate{
			Path:      path,
			Conflicts: len(doc.Regions),
			Issues:    len(doc.Issues),
			Resolved:  len(doc.Regions) == 0 && len(doc.Issues) == 0,
		})
	}
	return candidates, nil
}

func writeTempStages(base, local, remote []byte) (string, string, string, func(), error) {
	var created []string
	cleanup := func() {
		for _, p := range created {
			os.Remove(p)
		}
	}

	write := func(name string, data []byte) (string, error) {
		f, err := os.CreateTemp("", "threeway-"+name+"-*")
		if err != nil {
			return "", fmt.Errorf("create %s temp file: %w", name, err)
		}
		created = append(created, f.Name())
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s temp file: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s temp file: %w", name, err)
		}
		return f.Name(), nil
	}

	basePath, err := write("base", base)
	if err != nil {
		cleanup()
		return "", "", "", nil, err
	}
	localPath, err := write("local", local)
	if err != nil {
		cleanup()
		return "", "", "", nil, err
	}
	remotePath, err := write("remote", remote)
	if err != nil {
		cleanup()
		return "", "", "", nil, err
	}

	return basePath, localPath, remotePath, cleanup, nil
}
