package types

// MergeStrategy selects how changes travel from a variation back to its
// source.
type MergeStrategy string

const (
	// StrategyPatch diffs the variation against its recorded git base and
	// applies the resulting patch to the source working tree.
	StrategyPatch MergeStrategy = "patch"

	// StrategyMirror copies the variation's current state over the source
	// file by file.
	StrategyMirror MergeStrategy = "mirror"
)

// MergeOptions carries the flags of a single merge invocation.
type MergeOptions struct {
	// Name selects the variation to merge.
	Name string

	// DryRun reports what would change without touching the source.
	DryRun bool

	// Keep retains the variation directory after a successful merge.
	Keep bool

	// Delete lets the mirror strategy remove source files that are gone
	// from the variation. Ignored by the patch strategy, which derives
	// deletions from the diff.
	Delete bool

	// BranchSet is true when --branch was given in any form.
	BranchSet bool

	// BranchNamed is true when --branch was given with an explicit name.
	// When BranchSet is true and BranchNamed is false, the branch name is
	// derived from the variation name.
	BranchNamed bool

	// Branch is the explicit branch name, meaningful when BranchNamed.
	Branch string
}

// ChangeKind classifies one file-level change in a merge report.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// FileChange records one file the merge touched, or would touch in dry-run
// mode. Paths are relative to the source root.
type FileChange struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
}

// MergeResult holds the result of the 'merge' command.
type MergeResult struct {
	Variation VariationRecord `json:"variation"`
	Strategy  MergeStrategy   `json:"strategy"`
	DryRun    bool            `json:"dryRun"`

	// Branch is the branch the changes landed on, when one was used.
	Branch string `json:"branch,omitempty"`

	// BranchCreated is true when the branch did not exist before the merge.
	BranchCreated bool `json:"branchCreated,omitempty"`

	// BranchSkipped is true when --branch was requested but skipped
	// because the run was a dry run.
	BranchSkipped bool `json:"branchSkipped,omitempty"`

	// Changes lists the files the strategy changed in the source.
	Changes []FileChange `json:"changes"`

	// Untracked lists files carried over verbatim by the patch strategy
	// because they were new in the variation and invisible to the diff.
	Untracked []string `json:"untracked,omitempty"`

	// Cleaned is true when the variation directory was removed afterwards.
	Cleaned bool `json:"cleaned"`

	// CleanupError carries a cleanup failure. The merge itself still
	// succeeded; the variation directory was simply left behind.
	CleanupError string `json:"cleanupError,omitempty"`
}

// ChangedPaths returns the paths of all reported changes, in report order.
func (m *MergeResult) ChangedPaths() []string {
	paths := make([]string, 0, len(m.Changes))
	for _, c := range m.Changes {
		paths = append(paths, c.Path)
	}
	return paths
}

// CountByKind tallies the report's changes per kind.
func (m *MergeResult) CountByKind() map[ChangeKind]int {
	counts := make(map[ChangeKind]int)
	for _, c := range m.Changes {
		counts[c.Kind]++
	}
	return counts
}
