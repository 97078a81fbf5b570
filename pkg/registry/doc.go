// Package registry stores variation records as JSON files under the
// vary data directory. Records are keyed by a stable hash of the
// variation's absolute path, so the same clone always maps to the same
// record file regardless of how it was named on the command line.
package registry
