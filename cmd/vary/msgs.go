package vary

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Disposable copy-on-write variations of a directory"
	MsgNewShort        = "Clone the source into a new variation"
	MsgMergeShort      = "Merge a variation back into its source"
	MsgListShort       = "List variations"
	MsgRmShort         = "Delete a variation without merging"
	MsgPathShort       = "Print a variation's directory"
	MsgSnippetShort    = "Output shell integration snippet"
	MsgConfigShort     = "Print the effective configuration"
	MsgDoctorShort     = "Check the environment vary depends on"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice = "\nDRY RUN - no changes were made"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagWorkspace = "Directory variations are created under"
	MsgFlagColor     = "Color output: auto, always or never"
	MsgFlagName      = "Name for the variation (generated when omitted)"
	MsgFlagDest      = "Exact directory to clone into"
	MsgFlagPathOnly  = "Print only the variation path"
	MsgFlagDryRun    = "Report what the merge would change without touching anything"
	MsgFlagKeep      = "Keep the variation after a successful merge"
	MsgFlagDelete    = "Mirror merges also delete source files absent from the variation"
	MsgFlagBranch    = "Apply the patch on a branch (default vary/<name>)"
	MsgFlagAll       = "List variations of every project"
	MsgFlagFormat    = "Output format: text, json or yaml"
	MsgFlagForce     = "Remove even when the directory does not match the record"
	MsgFlagDefaults  = "Print the built-in defaults instead"
	MsgFlagWriteCfg  = "Write the effective configuration to the user config file"
)

// Long messages
const (
	MsgRootLong = `vary takes disposable copy-on-write snapshots of a working directory.

Clone the directory you are working in, experiment freely inside the
clone, then merge the changes back (or throw the clone away). Sources
under git merge as a patch against the revision recorded at clone time;
plain directories are mirrored file by file.`

	MsgNewLong = `Clone a source directory into a new variation.

The source defaults to the current directory; inside a git repository
the repository root is cloned so the variation is a complete working
copy. Cloning uses copy-on-write when the filesystem supports it and
falls back to a full copy otherwise.`

	MsgMergeLong = `Merge a variation's changes back into the directory it was cloned from.

Variations of git repositories merge by patch: the variation is diffed
against the revision recorded at clone time and the patch is applied to
the source with a three-way merge, followed by new untracked files.
Plain directories are mirrored file by file, additively unless --delete
is given.

After a successful merge the variation and its record are removed; use
--keep to hold on to them.`

	MsgSnippetLong = `Print the shell function that lets your shell follow vary around.

Add to your shell rc file:

  bash/zsh:  eval "$(vary snippet bash)"
  fish:      vary snippet fish | source

Then "vy new" creates a variation and cds into it, and "vy cd <name>"
jumps to an existing one.`

	MsgDoctorLong = `Probe the environment vary depends on: the git and rsync binaries,
workspace writability, copy-on-write support, registry health and the
configuration file. Exits non-zero when a required piece is missing.`
)
