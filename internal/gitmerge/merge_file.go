package gitmerge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// MergeViewDiff3 runs git's canonical three-way merge and returns a
// diff3-style merge view (conflict blocks carry base sections).
//
// Exit code 0 means clean merge. Any positive exit code is the number
// of conflicts found (truncated to 127 if >127), not a failure.
// Negative exit codes indicate errors.
func MergeViewDiff3(ctx context.Context, localPath, basePath, remotePath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "merge-file", "--diff3", "-p", localPath, basePath, remotePath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	// Conflict counts cap at 127; 128+ (e.g. 255 for unreadable
	// inputs) is a real failure.
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() > 0 && ee.ExitCode() <= 127 {
		return stdout.Bytes(), nil
	}

	msg := stderr.String()
	if msg == "" {
		msg = err.Error()
	}
	return nil, fmt.Errorf("git merge-file failed: %s", msg)
}
