// Package reconcile is the merge engine: it carries the changes made in
// a variation back to the source directory the variation was cloned
// from.
//
// Two strategies exist. Variations taken from a git repository record
// the source revision at clone time; merging them diffs the variation
// against that base and applies the patch to the source working tree,
// then carries over files that are new and untracked. Variations of
// plain directories are mirrored file by file instead, additively
// unless deletions are requested.
//
// Every merge takes the same path through the engine: preconditions,
// the per-variation lock, optional branch checkout, the strategy run,
// and cleanup. Dry runs stop mutating at the lock: they compute and
// report, touch nothing, and skip branches entirely.
package reconcile
