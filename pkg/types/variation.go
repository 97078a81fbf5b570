package types

import (
	"fmt"
	"path/filepath"
	"time"
)

// RecordVersion is the format version written to variation records. Readers
// reject any other version rather than guess at its meaning.
const RecordVersion = 1

// ArtifactName is the metadata file dropped at the root of every variation.
// It duplicates the registry record so a variation directory stays
// identifiable even if its registry entry is lost, and it is never carried
// back to the source during a merge.
const ArtifactName = ".vary.json"

// VariationRecord describes one tracked variation: a disposable copy of a
// source directory, keyed by the absolute path of the copy.
type VariationRecord struct {
	// Version is the record format version, always RecordVersion.
	Version int `json:"version"`

	// Name is the short handle used on the command line.
	Name string `json:"name"`

	// Project groups variations made from the same source directory.
	Project string `json:"project"`

	// SourcePath is the absolute path of the directory the variation
	// was cloned from.
	SourcePath string `json:"sourcePath"`

	// VariationPath is the absolute path of the clone itself.
	VariationPath string `json:"variationPath"`

	// CreatedAt is when the clone was taken, in UTC.
	CreatedAt time.Time `json:"createdAt"`

	// GitBase is the source revision recorded at clone time. Empty when
	// the source was not a git repository.
	GitBase string `json:"gitBase,omitempty"`
}

// GitBacked reports whether the variation recorded a git base revision at
// clone time, which selects the patch merge strategy.
func (r *VariationRecord) GitBacked() bool {
	return r.GitBase != ""
}

// Validate checks that the record is complete and internally consistent.
func (r *VariationRecord) Validate() error {
	if r.Version != RecordVersion {
		return fmt.Errorf("unsupported record version %d", r.Version)
	}
	if r.Name == "" {
		return fmt.Errorf("record has no name")
	}
	if r.Project == "" {
		return fmt.Errorf("record has no project")
	}
	if !filepath.IsAbs(r.SourcePath) {
		return fmt.Errorf("source path %q is not absolute", r.SourcePath)
	}
	if !filepath.IsAbs(r.VariationPath) {
		return fmt.Errorf("variation path %q is not absolute", r.VariationPath)
	}
	if r.SourcePath == r.VariationPath {
		return fmt.Errorf("variation path equals source path %q", r.SourcePath)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("record has no creation time")
	}
	return nil
}

// ArtifactPath returns the full path of the in-tree metadata file for this
// variation.
func (r *VariationRecord) ArtifactPath() string {
	return filepath.Join(r.VariationPath, ArtifactName)
}
