// Package gitsource syncs deck collections from git remotes.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Sync clones the repository at url into localPath, or fast-forwards
// an existing checkout from origin. It reports whether the checkout
// changed.
func Sync(ctx context.Context, url, localPath string) (bool, error) {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		if _, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return false, fmt.Errorf("clone %s: %w", url, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", localPath, err)
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return false, fmt.Errorf("open checkout %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("worktree %s: %w", localPath, err)
	}
	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pull %s: %w", localPath, err)
	}
	return true, nil
}

// CheckoutDir returns the checkout path for a remote inside baseDir,
// derived from the last path element of the URL.
func CheckoutDir(baseDir, url string) string {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "source"
	}
	return filepath.Join(baseDir, name)
}
