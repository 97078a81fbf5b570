package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/vary-sh/vary/pkg/types"
)

// Renderer defines the interface for rendering command results
type Renderer interface {
	RenderVariationList(result *types.ListResult) string
	RenderCreate(result *types.CreateResult) string
	RenderMergeReport(result *types.MergeResult) string
	RenderRemove(result *types.RemoveResult) string
	RenderDoctorReport(result *types.DoctorResult) string
	RenderError(err error) string
}

// NewRenderer selects a renderer for the given color mode: "always",
// "never", or "auto". Auto picks rich output only when stdout is a
// terminal and the environment does not disable color.
func NewRenderer(colorMode string) Renderer {
	switch colorMode {
	case "always":
		return NewTerminalRenderer()
	case "never":
		return NewPlainRenderer()
	}
	if isatty.IsTerminal(os.Stdout.Fd()) && !termenv.EnvNoColor() {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// TerminalRenderer implements Renderer with rich terminal output
type TerminalRenderer struct{}

// NewTerminalRenderer creates a new terminal renderer
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderVariationList renders the list of tracked variations
func (r *TerminalRenderer) RenderVariationList(result *types.ListResult) string {
	if len(result.Variations) == 0 {
		return MutedStyle.Render("No variations found")
	}

	var out strings.Builder
	out.WriteString(TitleStyle.Render("Variations") + "\n\n")

	for _, v := range result.Variations {
		line := fmt.Sprintf("%s %s %s", InfoIndicator, Bold(v.Name), MutedStyle.Render(v.Project))
		if v.Missing {
			line += " " + WarningStyle.Render("(missing)")
		}
		out.WriteString(line + "\n")
		out.WriteString(Indent(PathStyle.Render(v.VariationPath), 1) + "\n")
		out.WriteString(Indent(MutedStyle.Render("from "+v.SourcePath), 1) + "\n")
		out.WriteString("\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderCreate renders the result of creating a variation
func (r *TerminalRenderer) RenderCreate(result *types.CreateResult) string {
	rec := result.Variation

	var out strings.Builder
	out.WriteString(fmt.Sprintf("%s Created variation %s\n", SuccessIndicator, Bold(rec.Name)))
	out.WriteString(Indent(PathStyle.Render(rec.VariationPath), 1) + "\n")

	from := "from " + rec.SourcePath
	if rec.GitBacked() {
		from += fmt.Sprintf(" (git base %s)", shortRevision(rec.GitBase))
	}
	out.WriteString(Indent(MutedStyle.Render(from), 1))

	if result.Fallback {
		out.WriteString("\n" + Indent(WarningStyle.Render("!")+" "+MutedStyle.Render("copy-on-write unavailable, made a full copy"), 1))
	}

	return out.String()
}

// RenderMergeReport renders the outcome of a merge, including dry runs
func (r *TerminalRenderer) RenderMergeReport(result *types.MergeResult) string {
	rec := result.Variation

	var out strings.Builder
	if result.DryRun {
		out.WriteString(fmt.Sprintf("%s Dry run: merging %s into %s (%s)\n",
			InfoIndicator, Bold(rec.Name), PathStyle.Render(rec.SourcePath), result.Strategy))
	} else {
		out.WriteString(fmt.Sprintf("%s Merged %s into %s (%s)\n",
			SuccessIndicator, Bold(rec.Name), PathStyle.Render(rec.SourcePath), result.Strategy))
	}

	if len(result.Changes) == 0 && len(result.Untracked) == 0 {
		out.WriteString(Indent(MutedStyle.Render("source already up to date"), 1) + "\n")
	}

	for _, c := range result.Changes {
		out.WriteString(Indent(changeIndicator(c.Kind)+" "+c.Path, 1) + "\n")
	}
	for _, path := range result.Untracked {
		out.WriteString(Indent(CreateIndicator+" "+path+" "+MutedStyle.Render("(untracked)"), 1) + "\n")
	}

	if result.Branch != "" {
		branch := "on branch " + CodeStyle.Render(result.Branch)
		if result.BranchCreated {
			branch += MutedStyle.Render(" (created)")
		}
		out.WriteString(Indent(branch, 1) + "\n")
	}
	if result.BranchSkipped {
		out.WriteString(Indent(WarningIndicator+" "+MutedStyle.Render("branch skipped in dry run"), 1) + "\n")
	}

	switch {
	case result.Cleaned:
		out.WriteString(Indent(MutedStyle.Render("variation directory removed"), 1) + "\n")
	case result.CleanupError != "":
		out.WriteString(Indent(WarningIndicator+" "+MutedStyle.Render("cleanup failed: "+result.CleanupError), 1) + "\n")
	case !result.DryRun:
		out.WriteString(Indent(MutedStyle.Render("variation kept at "+rec.VariationPath), 1) + "\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderRemove renders the result of removing a variation
func (r *TerminalRenderer) RenderRemove(result *types.RemoveResult) string {
	rec := result.Variation
	if !result.Removed {
		return fmt.Sprintf("%s Dropped record for %s %s", SuccessIndicator, Bold(rec.Name),
			MutedStyle.Render("(directory was already gone)"))
	}
	return fmt.Sprintf("%s Removed %s\n%s", SuccessIndicator, Bold(rec.Name),
		Indent(PathStyle.Render(rec.VariationPath), 1))
}

// RenderDoctorReport renders health check results
func (r *TerminalRenderer) RenderDoctorReport(result *types.DoctorResult) string {
	var out strings.Builder
	out.WriteString(TitleStyle.Render("Doctor") + "\n\n")

	for _, c := range result.Checks {
		out.WriteString(fmt.Sprintf("%s %s", CheckBadge(c.Status), Bold(c.Name)))
		if c.Message != "" {
			out.WriteString(": " + c.Message)
		}
		out.WriteString("\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderError renders an error message
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

func changeIndicator(kind types.ChangeKind) string {
	switch kind {
	case types.ChangeCreate:
		return CreateIndicator
	case types.ChangeUpdate:
		return UpdateIndicator
	case types.ChangeDelete:
		return DeleteIndicator
	default:
		return InfoIndicator
	}
}

// PlainRenderer implements Renderer with plain text output (no styling)
type PlainRenderer struct{}

// NewPlainRenderer creates a new plain text renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderVariationList renders a plain list of variations
func (r *PlainRenderer) RenderVariationList(result *types.ListResult) string {
	if len(result.Variations) == 0 {
		return "No variations found"
	}

	var out strings.Builder
	out.WriteString("Variations:\n")

	for _, v := range result.Variations {
		line := fmt.Sprintf("  - %s (%s) %s", v.Name, v.Project, v.VariationPath)
		if v.Missing {
			line += " [missing]"
		}
		out.WriteString(line + "\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderCreate renders a plain creation result
func (r *PlainRenderer) RenderCreate(result *types.CreateResult) string {
	rec := result.Variation

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Created variation %s\n", rec.Name))
	out.WriteString(fmt.Sprintf("  path: %s\n", rec.VariationPath))
	out.WriteString(fmt.Sprintf("  from: %s\n", rec.SourcePath))
	if rec.GitBacked() {
		out.WriteString(fmt.Sprintf("  git base: %s\n", shortRevision(rec.GitBase)))
	}
	if result.Fallback {
		out.WriteString("  note: copy-on-write unavailable, made a full copy\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderMergeReport renders a plain merge report
func (r *PlainRenderer) RenderMergeReport(result *types.MergeResult) string {
	rec := result.Variation

	var out strings.Builder
	if result.DryRun {
		out.WriteString(fmt.Sprintf("Dry run: merging %s into %s (%s)\n", rec.Name, rec.SourcePath, result.Strategy))
	} else {
		out.WriteString(fmt.Sprintf("Merged %s into %s (%s)\n", rec.Name, rec.SourcePath, result.Strategy))
	}

	if len(result.Changes) == 0 && len(result.Untracked) == 0 {
		out.WriteString("  source already up to date\n")
	}

	for _, c := range result.Changes {
		out.WriteString(fmt.Sprintf("  %s %s\n", plainChangeMarker(c.Kind), c.Path))
	}
	for _, path := range result.Untracked {
		out.WriteString(fmt.Sprintf("  + %s (untracked)\n", path))
	}

	if result.Branch != "" {
		if result.BranchCreated {
			out.WriteString(fmt.Sprintf("  on branch %s (created)\n", result.Branch))
		} else {
			out.WriteString(fmt.Sprintf("  on branch %s\n", result.Branch))
		}
	}
	if result.BranchSkipped {
		out.WriteString("  branch skipped in dry run\n")
	}

	switch {
	case result.Cleaned:
		out.WriteString("  variation directory removed\n")
	case result.CleanupError != "":
		out.WriteString(fmt.Sprintf("  cleanup failed: %s\n", result.CleanupError))
	case !result.DryRun:
		out.WriteString(fmt.Sprintf("  variation kept at %s\n", rec.VariationPath))
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderRemove renders a plain removal result
func (r *PlainRenderer) RenderRemove(result *types.RemoveResult) string {
	rec := result.Variation
	if !result.Removed {
		return fmt.Sprintf("Dropped record for %s (directory was already gone)", rec.Name)
	}
	return fmt.Sprintf("Removed %s\n  %s", rec.Name, rec.VariationPath)
}

// RenderDoctorReport renders plain health check results
func (r *PlainRenderer) RenderDoctorReport(result *types.DoctorResult) string {
	var out strings.Builder
	out.WriteString("Doctor:\n")

	for _, c := range result.Checks {
		line := fmt.Sprintf("  %-4s %s", c.Status, c.Name)
		if c.Message != "" {
			line += ": " + c.Message
		}
		out.WriteString(line + "\n")
	}

	return strings.TrimRight(out.String(), "\n")
}

// RenderError renders a plain error message
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

func plainChangeMarker(kind types.ChangeKind) string {
	switch kind {
	case types.ChangeCreate:
		return "+"
	case types.ChangeUpdate:
		return "~"
	case types.ChangeDelete:
		return "-"
	default:
		return "*"
	}
}

// shortRevision trims a full git object id down to the familiar short form
func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
