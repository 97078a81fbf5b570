// Package shell produces the integration snippet users source from
// their shell rc file. A child process cannot change its parent's
// working directory, so `vary` prints a wrapper function that calls
// the binary and cd's into the paths it reports.
package shell

import (
	"github.com/vary-sh/vary/pkg/errors"
)

// Supported shells.
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// posixSnippet works in bash and zsh. `vy new` creates a variation and
// enters it, `vy cd` jumps to an existing one, anything else falls
// through to the binary.
const posixSnippet = `# vary shell integration
vy() {
    case "$1" in
        new)
            shift
            local dest
            dest="$(command vary new --path-only "$@")" || return $?
            cd "$dest" || return $?
            ;;
        cd)
            shift
            local dest
            dest="$(command vary path "$@")" || return $?
            cd "$dest" || return $?
            ;;
        *)
            command vary "$@"
            ;;
    esac
}`

const fishSnippet = `# vary shell integration
function vy
    switch "$argv[1]"
        case new
            set -l dest (command vary new --path-only $argv[2..-1]); or return $status
            cd "$dest"
        case cd
            set -l dest (command vary path $argv[2..-1]); or return $status
            cd "$dest"
        case '*'
            command vary $argv
    end
end`

// Snippet returns the integration function for the given shell.
func Snippet(shellName string) (string, error) {
	switch shellName {
	case ShellBash, ShellZsh:
		return posixSnippet, nil
	case ShellFish:
		return fishSnippet, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput,
			"unsupported shell %q (supported: bash, zsh, fish)", shellName)
	}
}
