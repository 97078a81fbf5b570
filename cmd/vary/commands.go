// Package vary wires the command surface: one cobra command per
// operation, each delegating to its command package and rendering the
// result through the style layer.
package vary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vary-sh/vary/internal/version"
	"github.com/vary-sh/vary/pkg/commands/create"
	"github.com/vary-sh/vary/pkg/commands/doctor"
	"github.com/vary-sh/vary/pkg/commands/list"
	"github.com/vary-sh/vary/pkg/commands/merge"
	"github.com/vary-sh/vary/pkg/commands/remove"
	"github.com/vary-sh/vary/pkg/config"
	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/paths"
	"github.com/vary-sh/vary/pkg/shell"
	"github.com/vary-sh/vary/pkg/style"
	"github.com/vary-sh/vary/pkg/types"
)

// branchSentinel marks a bare --branch so it can be told apart from
// --branch=<name>. "@" can never name a git branch.
const branchSentinel = "@"

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "vary",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help but exit non-zero.
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().String("workspace", "", MsgFlagWorkspace)
	rootCmd.PersistentFlags().String("color", "", MsgFlagColor)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newPathCmd())
	rootCmd.AddCommand(newSnippetCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	installHelpTopics(rootCmd)

	return rootCmd
}

// loadConfig loads the user configuration, falling back to defaults
// with a warning when it is broken. `vary doctor` reports the details.
func loadConfig() *config.Config {
	p, err := paths.New("")
	if err != nil {
		log.Warn().Err(err).Msg("Cannot resolve paths, using defaults")
		return nil
	}
	cfg, err := config.Load(p)
	if err != nil {
		log.Warn().Err(err).Msg("Configuration broken, using defaults")
		return nil
	}
	return cfg
}

// setup resolves the pieces every command needs: the effective
// workspace (flag over config over environment) and the configuration.
func setup(cmd *cobra.Command) (string, *config.Config) {
	cfg := loadConfig()
	workspace, _ := cmd.Root().PersistentFlags().GetString("workspace")
	if workspace == "" && cfg != nil {
		workspace = cfg.Workspace()
	}
	return workspace, cfg
}

// newRenderer builds the renderer once per invocation from the --color
// flag and the configuration.
func newRenderer(cmd *cobra.Command, cfg *config.Config) style.Renderer {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	if mode == "" && cfg != nil {
		mode = cfg.Color()
	}
	if mode == "" {
		mode = config.ModeAuto
	}
	return style.NewRenderer(mode)
}

// variationNamesCompletion provides shell completion for variation names
func variationNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	result, err := list.ListVariations(cmd.Context(), list.Options{All: true})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, v := range result.Variations {
		names = append(names, v.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func newNewCmd() *cobra.Command {
	var (
		name     string
		dest     string
		pathOnly bool
	)

	cmd := &cobra.Command{
		Use:     "new [dir]",
		Short:   MsgNewShort,
		Long:    MsgNewLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg := setup(cmd)

			sourceDir := ""
			if len(args) > 0 {
				sourceDir = args[0]
			}
			separator, reflink := "", ""
			if cfg != nil {
				separator = cfg.NamingSeparator()
				reflink = cfg.Reflink()
			}

			result, err := create.CreateVariation(cmd.Context(), create.Options{
				SourceDir:   sourceDir,
				Name:        name,
				Dest:        dest,
				Workspace:   workspace,
				Separator:   separator,
				ReflinkMode: reflink,
			})
			if err != nil {
				return err
			}

			if pathOnly {
				fmt.Fprintln(cmd.OutOrStdout(), result.Variation.VariationPath)
				return nil
			}
			renderer := newRenderer(cmd, cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderCreate(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	cmd.Flags().StringVar(&dest, "dest", "", MsgFlagDest)
	cmd.Flags().BoolVar(&pathOnly, "path-only", false, MsgFlagPathOnly)
	return cmd
}

func newMergeCmd() *cobra.Command {
	var (
		dryRun     bool
		keep       bool
		withDelete bool
		branch     string
	)

	cmd := &cobra.Command{
		Use:               "merge <name>",
		Short:             MsgMergeShort,
		Long:              MsgMergeLong,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: variationNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg := setup(cmd)

			if !cmd.Flags().Changed("keep") && cfg != nil && cfg.MergeKeep() {
				keep = true
			}

			mergeOpts := types.MergeOptions{
				Name:   args[0],
				DryRun: dryRun,
				Keep:   keep,
				Delete: withDelete,
			}
			if cmd.Flags().Changed("branch") {
				mergeOpts.BranchSet = true
				if branch != branchSentinel {
					mergeOpts.BranchNamed = true
					mergeOpts.Branch = branch
				}
			}

			result, err := merge.MergeVariation(cmd.Context(), merge.Options{
				Merge:     mergeOpts,
				Workspace: workspace,
			})
			if err != nil {
				return err
			}

			renderer := newRenderer(cmd, cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderMergeReport(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&keep, "keep", false, MsgFlagKeep)
	cmd.Flags().BoolVar(&withDelete, "delete", false, MsgFlagDelete)
	cmd.Flags().StringVar(&branch, "branch", "", MsgFlagBranch)
	cmd.Flags().Lookup("branch").NoOptDefVal = branchSentinel
	return cmd
}

func newListCmd() *cobra.Command {
	var (
		all    bool
		format string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg := setup(cmd)

			result, err := list.ListVariations(cmd.Context(), list.Options{
				All:       all,
				Workspace: workspace,
			})
			if err != nil {
				return err
			}

			switch format {
			case "text":
				renderer := newRenderer(cmd, cfg)
				fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderVariationList(result))
			case "json":
				data, err := json.MarshalIndent(result.Variations, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "yaml":
				data, err := yaml.Marshal(result.Variations)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			default:
				return errors.Newf(errors.ErrUsage, "unsupported format %q (supported: text, json, yaml)", format)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, MsgFlagAll)
	cmd.Flags().StringVar(&format, "format", "text", MsgFlagFormat)
	return cmd
}

func newRmCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "rm <name>",
		Short:             MsgRmShort,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: variationNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg := setup(cmd)

			result, err := remove.RemoveVariation(cmd.Context(), remove.Options{
				Name:      args[0],
				Force:     force,
				Workspace: workspace,
			})
			if err != nil {
				return err
			}

			renderer := newRenderer(cmd, cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderRemove(result))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "path <name>",
		Short:             MsgPathShort,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: variationNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, _ := setup(cmd)

			path, err := list.VariationPath(list.Options{Workspace: workspace}, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newSnippetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "snippet [bash|zsh|fish]",
		Short:     MsgSnippetShort,
		Long:      MsgSnippetLong,
		GroupID:   "misc",
		ValidArgs: []string{"bash", "zsh", "fish"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			shellName := detectShell(args)
			snippet, err := shell.Snippet(shellName)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), snippet)
			return nil
		},
	}
}

// detectShell picks the snippet flavor: explicit argument, then the
// login shell, then bash.
func detectShell(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if s := os.Getenv("SHELL"); s != "" {
		switch base := filepath.Base(s); base {
		case shell.ShellBash, shell.ShellZsh, shell.ShellFish:
			return base
		}
	}
	return shell.ShellBash
}

func newConfigCmd() *cobra.Command {
	var showDefaults bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showDefaults {
				fmt.Fprint(cmd.OutOrStdout(), config.GetDefaultConfigContent())
				return nil
			}

			p, err := paths.New("")
			if err != nil {
				return err
			}
			cfg, err := config.Load(p)
			if err != nil {
				return err
			}
			data, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDefaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newDoctorCmd() *cobra.Command {
	var writeConfig bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   MsgDoctorShort,
		Long:    MsgDoctorLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace, cfg := setup(cmd)

			result, err := doctor.RunDoctor(cmd.Context(), doctor.Options{
				WriteConfig: writeConfig,
				Workspace:   workspace,
			})
			if err != nil {
				return err
			}

			renderer := newRenderer(cmd, cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderDoctorReport(result))

			if !result.Healthy() {
				return fmt.Errorf("environment is not healthy")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, MsgFlagWriteCfg)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vary version %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
