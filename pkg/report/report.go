// Package report renders resolution results, rule lists and generation
// summaries as human-readable text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rerades/ai-rules-cli/pkg/render"
	"github.com/rerades/ai-rules-cli/pkg/resolver"
	"github.com/rerades/ai-rules-cli/pkg/rules"
	"github.com/rerades/ai-rules-cli/pkg/ui/theme"
)

// DefaultWidth is the wrap width used when none is configured.
const DefaultWidth = 80

var titleCaser = cases.Title(language.English)

// CategoryTitle returns a display title for a category, e.g. "Foundation"
// for "foundation", or "Code Review" for "code-review".
func CategoryTitle(category string) string {
	return titleCaser.String(strings.ReplaceAll(category, "-", " "))
}

// Printer writes reports to an [io.Writer].
type Printer struct {
	w      io.Writer
	theme  *theme.Theme
	width  int
	styled bool
}

// Opt configures a [Printer].
type Opt func(*Printer)

// WithTheme sets the theme used for styled output.
func WithTheme(t *theme.Theme) Opt {
	return func(p *Printer) {
		p.theme = t
	}
}

// WithStyle enables or disables styled output.
func WithStyle(styled bool) Opt {
	return func(p *Printer) {
		p.styled = styled
	}
}

// WithWidth sets the width used to wrap long text.
func WithWidth(width int) Opt {
	return func(p *Printer) {
		if width > 0 {
			p.width = width
		}
	}
}

// New creates a new [Printer]. Output is unstyled unless [WithStyle] is used.
func New(w io.Writer, opts ...Opt) *Printer {
	p := &Printer{
		w:     w,
		theme: theme.Default,
		width: DefaultWidth,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}

	return s.Render(text)
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) header(text string) {
	p.printf("%s\n", p.render(p.theme.HeaderStyle, text))
}

func (p *Printer) none() {
	p.printf("  %s\n", p.render(p.theme.SubtleStyle, "none"))
}

// Resolution writes every section of a resolution result.
func (p *Printer) Resolution(res *resolver.Result) {
	p.header("Dependencies:")
	if len(res.Dependencies) == 0 {
		p.none()
	}

	for _, dep := range res.Dependencies {
		var parts []string
		if len(dep.AddedDependencies) > 0 {
			parts = append(parts, "added "+strings.Join(dep.AddedDependencies, ", "))
		}
		if len(dep.MissingDependencies) > 0 {
			parts = append(parts, p.render(p.theme.WarningStyle, "missing "+strings.Join(dep.MissingDependencies, ", ")))
		}

		p.printf("  %s: %s\n", p.render(p.theme.SelectedStyle, dep.RuleID), strings.Join(parts, "; "))
	}

	p.header("Conflicts:")
	if len(res.Conflicts) == 0 {
		p.none()
	}

	for _, c := range res.Conflicts {
		p.printf("  %s\n", p.render(p.theme.ErrorTextStyle, c.Reason))
	}

	p.header("Superseding:")
	if len(res.Superseding) == 0 {
		p.none()
	}

	for _, s := range res.Superseding {
		p.printf("  %s superseded by %s\n", s.Superseded, p.render(p.theme.SelectedStyle, s.Superseding))
	}

	p.header("Warnings:")
	if len(res.Warnings) == 0 {
		p.none()
	}

	for _, w := range res.Warnings {
		p.printf("  %s\n", p.render(p.theme.WarningStyle, w))
	}

	p.header(fmt.Sprintf("Final selection (%d):", len(res.FinalSelections)))
	p.Selections(res.FinalSelections)
}

// Selections writes one line per selected rule.
func (p *Printer) Selections(selections []resolver.RuleSelection) {
	if len(selections) == 0 {
		p.none()
	}

	for _, s := range selections {
		p.printf("  %s %s %s\n",
			p.render(p.theme.SuccessStyle, "✓"),
			s.RuleID,
			p.render(p.theme.SubtleStyle, "("+string(s.Reason)+")"),
		)
	}
}

// Rules writes rules grouped by category, with wrapped descriptions.
func (p *Printer) Rules(list []*rules.Rule) {
	if len(list) == 0 {
		p.printf("%s\n", p.render(p.theme.SubtleStyle, "No rules found."))

		return
	}

	idWidth := 0
	for _, r := range list {
		idWidth = max(idWidth, len(r.ID))
	}

	category := ""
	for i, r := range list {
		if r.Category != category || i == 0 {
			if i > 0 {
				p.printf("\n")
			}

			category = r.Category
			p.header(CategoryTitle(category))
		}

		//nolint:gosec // G115: Always positive.
		title := truncate.StringWithTail(r.Title, uint(max(p.width-idWidth-12, 10)), "…")
		p.printf("  %s  %s  %s\n",
			p.render(p.theme.SelectedStyle, fmt.Sprintf("%-*s", idWidth, r.ID)),
			p.render(p.theme.SubtleStyle, fmt.Sprintf("v%-6s", r.Version)),
			title,
		)

		if r.Description != "" {
			desc := wordwrap.String(r.Description, max(p.width-6, 20))
			p.printf("%s\n", p.render(p.theme.SubtleStyle, indent.String(desc, 6)))
		}
	}
}

// RuleDetails writes the metadata of a single rule.
func (p *Printer) RuleDetails(r *rules.Rule) {
	p.printf("%s %s\n", p.render(p.theme.TitleStyle, r.Title), p.render(p.theme.SubtleStyle, "v"+r.Version))
	p.printf("%s\n\n", wordwrap.String(r.Description, p.width))

	field := func(name string, value string) {
		if value == "" {
			return
		}

		p.printf("  %s %s\n", p.render(p.theme.HeaderStyle, fmt.Sprintf("%-12s", name+":")), value)
	}

	field("ID", r.ID)
	field("Category", CategoryTitle(r.Category))
	field("Priority", fmt.Sprint(r.GetPriority()))
	field("Tags", strings.Join(r.Tags, ", "))
	field("Globs", strings.Join(r.Globs, ", "))
	if r.AlwaysApply {
		field("Always", "applied to every file")
	}
	field("Requires", strings.Join(r.Requires, ", "))
	field("Conflicts", strings.Join(r.Conflicts, ", "))
	field("Supersedes", strings.Join(r.Supersedes, ", "))
	field("Source", r.Origin+":"+r.Source)
}

// Problems writes rule documents that could not be loaded.
func (p *Printer) Problems(problems []rules.Problem) {
	for _, pr := range problems {
		p.printf("%s %s\n%s\n",
			p.render(p.theme.ErrorTitleStyle, "invalid"),
			p.render(p.theme.SelectedStyle, pr.Source+":"+pr.Path),
			indent.String(pr.Err.Error(), 2),
		)
	}
}

// References writes relation references whose target is unknown.
func (p *Printer) References(refs []rules.Reference) {
	for _, ref := range refs {
		p.printf("%s %s %s %s\n",
			p.render(p.theme.WarningStyle, "dangling"),
			p.render(p.theme.SelectedStyle, ref.RuleID),
			ref.Relation,
			ref.Target,
		)
	}
}

// Plan writes the changes a [render.Plan] would make, including diffs.
func (p *Printer) Plan(plan *render.Plan) {
	for _, f := range plan.Files {
		p.printf("%s %s\n", p.status(f.Status), f.Path)
	}

	for _, f := range plan.Stale {
		p.printf("%s %s\n", p.status(f.Status), f.Path)
	}

	diff := plan.Diff()
	if diff == "" {
		return
	}

	p.printf("\n")

	for line := range strings.Lines(diff) {
		line = strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			p.printf("%s\n", p.render(p.theme.HeaderStyle, line))
		case strings.HasPrefix(line, "+"):
			p.printf("%s\n", p.render(p.theme.DiffInsertedStyle, line))
		case strings.HasPrefix(line, "-"):
			p.printf("%s\n", p.render(p.theme.DiffDeletedStyle, line))
		case strings.HasPrefix(line, "@@"):
			p.printf("%s\n", p.render(p.theme.SubtleStyle, line))
		default:
			p.printf("%s\n", line)
		}
	}
}

func (p *Printer) status(s render.Status) string {
	label := fmt.Sprintf("%-9s", s)

	switch s {
	case render.StatusCreate:
		return p.render(p.theme.SuccessStyle, label)
	case render.StatusUpdate:
		return p.render(p.theme.WarningStyle, label)
	case render.StatusStale:
		return p.render(p.theme.ErrorTextStyle, label)
	default:
		return p.render(p.theme.SubtleStyle, label)
	}
}

// Summary writes the outcome of a generation run.
func (p *Printer) Summary(sum *render.Summary) {
	p.printf("%s %d written, %d unchanged (%s) in %s\n",
		p.render(p.theme.ResultTitleStyle, "generated"),
		len(sum.Written),
		len(sum.Unchanged),
		humanize.Bytes(sum.Bytes),
		sum.Dir,
	)

	for _, path := range sum.Pruned {
		p.printf("  %s %s\n", p.render(p.theme.ErrorTextStyle, "pruned"), path)
	}

	if len(sum.Stale) > 0 {
		p.printf("%s\n", p.render(p.theme.WarningStyle,
			fmt.Sprintf("%d stale %s not removed (use --prune):",
				len(sum.Stale), plural(len(sum.Stale), "file", "files"))))

		for _, path := range sum.Stale {
			p.printf("  %s\n", path)
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
