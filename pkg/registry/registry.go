package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/namegen"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/types"
)

// pathKeyLen is how many hex characters of the path hash form a record key.
const pathKeyLen = 16

// projectHashLen is how many hex characters of the source hash go into
// a project key.
const projectHashLen = 8

// Registry reads and writes variation records.
type Registry struct {
	fs     types.FS
	paths  paths.Paths
	logger zerolog.Logger
}

// New creates a Registry backed by the given filesystem and paths.
func New(fs types.FS, p paths.Paths) *Registry {
	return &Registry{
		fs:     fs,
		paths:  p,
		logger: logging.GetLogger("registry"),
	}
}

// PathKey returns the record key for a variation path. The path must be
// absolute; it is cleaned before hashing so trailing slashes and dot
// segments do not change the key.
func PathKey(variationPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(variationPath)))
	return hex.EncodeToString(sum[:])[:pathKeyLen]
}

// ProjectKey derives the project grouping key for a source directory:
// a slug of its basename plus a short hash of its full path, so two
// sources with the same basename stay distinct.
func ProjectKey(sourcePath string) string {
	cleaned := filepath.Clean(sourcePath)
	slug := namegen.Slugify(filepath.Base(cleaned))
	if slug == "" {
		slug = "project"
	}
	sum := sha256.Sum256([]byte(cleaned))
	return slug + "-" + hex.EncodeToString(sum[:])[:projectHashLen]
}

// RecordPath returns where the record for a variation path is stored.
func (r *Registry) RecordPath(variationPath string) string {
	return filepath.Join(r.paths.RegistryDir(), PathKey(variationPath)+".json")
}

// Save writes a record, replacing any previous record for the same
// variation path. The write goes through a temp file and rename so a
// crash never leaves a half-written record behind.
func (r *Registry) Save(record *types.VariationRecord) error {
	if err := record.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid variation record")
	}

	if err := r.fs.MkdirAll(r.paths.RegistryDir(), 0755); err != nil {
		return errors.Wrap(err, errors.ErrRegistryIO, "failed to create registry directory")
	}

	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	target := r.RecordPath(record.VariationPath)
	tmp := target + ".tmp"
	if err := r.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryIO, "failed to write record for %s", record.Name)
	}
	if err := r.fs.Rename(tmp, target); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryIO, "failed to store record for %s", record.Name)
	}

	r.logger.Debug().
		Str("name", record.Name).
		Str("path", target).
		Msg("Saved variation record")

	return nil
}

// Get loads the record for a variation path.
func (r *Registry) Get(variationPath string) (*types.VariationRecord, error) {
	record, err := r.LoadFile(r.RecordPath(variationPath))
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return nil, errors.Newf(errors.ErrVariationNotFound, "no variation recorded at %s", variationPath)
		}
		return nil, err
	}
	return record, nil
}

// FindByName looks up a record by variation name.
func (r *Registry) FindByName(name string) (*types.VariationRecord, error) {
	records, err := r.List()
	if err != nil {
		return nil, err
	}

	var matches []*types.VariationRecord
	for i := range records {
		if records[i].Name == name {
			matches = append(matches, &records[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.Newf(errors.ErrVariationNotFound, "no variation named %q", name)
	case 1:
		return matches[0], nil
	default:
		// Should not happen: creation enforces unique names. A registry
		// assembled by hand can still get here.
		paths := make([]string, len(matches))
		for i, m := range matches {
			paths[i] = m.VariationPath
		}
		return nil, errors.Newf(errors.ErrInternal, "name %q matches %d variations: %s",
			name, len(matches), strings.Join(paths, ", "))
	}
}

// List returns all readable records, sorted by creation time, newest
// last. Unreadable record files are skipped with a warning; doctor
// reports them.
func (r *Registry) List() ([]types.VariationRecord, error) {
	entries, err := r.fs.ReadDir(r.paths.RegistryDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrRegistryIO, "failed to read registry directory")
	}

	var records []types.VariationRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(r.paths.RegistryDir(), entry.Name())
		record, err := r.LoadFile(path)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable record")
			continue
		}
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Name < records[j].Name
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

// Delete removes the record for a variation path. Deleting a record
// that is already gone is not an error.
func (r *Registry) Delete(variationPath string) error {
	err := r.fs.Remove(r.RecordPath(variationPath))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrRegistryIO, "failed to delete record for %s", variationPath)
	}
	return nil
}

// LoadFile reads and validates a single record file.
func (r *Registry) LoadFile(path string) (*types.VariationRecord, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "no record at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrRegistryIO, "failed to read record %s", path)
	}
	return decodeRecord(data, path)
}

// WriteArtifact drops the in-tree metadata file at the variation root.
// The artifact duplicates the registry record so the directory stays
// identifiable on its own.
func (r *Registry) WriteArtifact(record *types.VariationRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := r.fs.WriteFile(record.ArtifactPath(), data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryIO, "failed to write %s", types.ArtifactName)
	}
	return nil
}

// ReadArtifact reads the in-tree metadata file of a variation directory.
func (r *Registry) ReadArtifact(variationPath string) (*types.VariationRecord, error) {
	path := filepath.Join(variationPath, types.ArtifactName)
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "no %s in %s", types.ArtifactName, variationPath)
		}
		return nil, errors.Wrapf(err, errors.ErrRegistryIO, "failed to read %s", path)
	}
	return decodeRecord(data, path)
}

func encodeRecord(record *types.VariationRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRegistryIO, "failed to encode record")
	}
	return append(data, '\n'), nil
}

func decodeRecord(data []byte, path string) (*types.VariationRecord, error) {
	var record types.VariationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryIO, "malformed record %s", path)
	}
	if err := record.Validate(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryIO, "invalid record %s", path)
	}
	return &record, nil
}
