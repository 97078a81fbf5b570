// Package hashutil computes content digests over an injected filesystem
// so callers stay testable against in-memory trees.
package hashutil

import (
	"crypto/sha256"
	"fmt"

	"github.com/vary-sh/vary/pkg/types"
)

// FileChecksum hashes the file at path and returns the digest as
// "sha256:<hex>".
func FileChecksum(fsys types.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum), nil
}
