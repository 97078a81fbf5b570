package reconcile

import (
	"context"
	"strings"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/gitcmd"
	"github.com/vary-sh/vary/pkg/types"
)

// BranchPrefix namespaces branches derived from variation names.
const BranchPrefix = "vary/"

// DeriveBranchName returns the branch a variation merges onto when no
// explicit branch name was given.
func DeriveBranchName(variationName string) string {
	return BranchPrefix + variationName
}

// resolveBranch turns the branch options into the branch name the merge
// should land on, or "" when no branch was requested. Branches only
// make sense for the patch strategy; asking for one on a mirrored
// variation is a usage error, as is an explicitly empty name.
func resolveBranch(rec *types.VariationRecord, kind types.MergeStrategy, opts types.MergeOptions) (string, error) {
	if !opts.BranchSet {
		return "", nil
	}
	if kind != types.StrategyPatch {
		return "", errors.New(errors.ErrBranchWithMirror,
			"branches require a git-backed variation").
			WithDetail("variation", rec.Name).
			WithDetail("strategy", string(kind))
	}
	if !opts.BranchNamed {
		return DeriveBranchName(rec.Name), nil
	}
	name := strings.TrimSpace(opts.Branch)
	if name == "" {
		return "", errors.New(errors.ErrEmptyBranchName, "branch name is empty")
	}
	return name, nil
}

// checkoutBranch makes sure the named branch exists in the source
// repository and checks it out. It reports whether the branch had to
// be created. Reusing an existing branch is fine; the patch simply
// lands on top of whatever it points at.
func checkoutBranch(ctx context.Context, git gitcmd.Git, sourceDir, name string) (bool, error) {
	exists, err := git.BranchExists(ctx, sourceDir, name)
	if err != nil {
		return false, err
	}
	created := false
	if !exists {
		if err := git.CreateBranch(ctx, sourceDir, name); err != nil {
			return false, err
		}
		created = true
	}
	if err := git.Checkout(ctx, sourceDir, name); err != nil {
		return created, err
	}
	return created, nil
}
