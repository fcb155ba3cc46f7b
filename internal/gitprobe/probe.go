// Package gitprobe reports repository state through go-git.
package gitprobe

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"

	"github.com/aetherlight/readygate/internal/engine"
)

// Probe implements engine.GitProbe against a local repository.
type Probe struct {
	path string
}

// New creates a probe rooted at path.
func New(path string) *Probe {
	return &Probe{path: path}
}

// Status returns the current branch and working tree cleanliness.
//
// A missing repository, detached HEAD, or bare repository is an error; the
// engine degrades the dependent prerequisite rather than failing the check.
func (p *Probe) Status(_ context.Context) (*engine.GitStatus, error) {
	repo, err := git.PlainOpen(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", p.path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return nil, fmt.Errorf("HEAD is not on a branch")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to compute worktree status: %w", err)
	}

	return &engine.GitStatus{
		Branch: head.Name().Short(),
		Clean:  status.IsClean(),
	}, nil
}
