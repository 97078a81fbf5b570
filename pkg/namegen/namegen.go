// Package namegen produces the short memorable names vary gives to
// variations, and the slug helpers used for project keys and branch
// names.
package namegen

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/vary-sh/vary/pkg/errors"
)

var adjectives = []string{
	"amber", "bold", "brisk", "calm", "clever", "crisp",
	"daring", "deft", "eager", "fleet", "gentle", "keen",
	"lively", "lucid", "mellow", "nimble", "plucky", "quiet",
	"rapid", "sly", "spry", "steady", "sunny", "swift",
	"tidy", "vivid", "wild", "witty",
}

var animals = []string{
	"badger", "bat", "bison", "crane", "crow", "deer",
	"dove", "ferret", "finch", "fox", "hare", "heron",
	"ibis", "lark", "lynx", "marmot", "marten", "mole",
	"otter", "owl", "raven", "seal", "shrew", "stoat",
	"swan", "tern", "vole", "wren",
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Generate returns a random adjective-animal name joined by sep.
func Generate(sep string) string {
	adj := adjectives[rand.IntN(len(adjectives))]
	animal := animals[rand.IntN(len(animals))]
	return adj + sep + animal
}

// GenerateUnique returns a generated name for which taken reports false.
// After a bounded number of random attempts it falls back to a numeric
// suffix, so it always terminates.
func GenerateUnique(sep string, taken func(string) bool) string {
	var name string
	for i := 0; i < 16; i++ {
		name = Generate(sep)
		if !taken(name) {
			return name
		}
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%s%d", name, sep, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// ValidateName checks a user-supplied variation name: lowercase
// letters, digits, and hyphens, not starting with a hyphen.
func ValidateName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "variation name is empty")
	}
	if len(name) > 64 {
		return errors.Newf(errors.ErrInvalidInput, "variation name %q is longer than 64 characters", name)
	}
	if !namePattern.MatchString(name) {
		return errors.Newf(errors.ErrInvalidInput,
			"variation name %q may only contain lowercase letters, digits, and hyphens", name)
	}
	return nil
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen. The result is safe for project keys,
// file names, and git branch segments.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // swallow leading hyphens
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
