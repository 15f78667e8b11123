package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rerades/ai-rules-cli/pkg/resolver"
	"github.com/rerades/ai-rules-cli/pkg/ui/theme"
)

// CheckInteractive returns [ErrNotInteractive] unless both in and out are
// terminals.
func CheckInteractive(in io.Reader, out io.Writer) error {
	for _, f := range []any{in, out} {
		fd, ok := f.(interface{ Fd() uintptr })
		if !ok || !term.IsTerminal(int(fd.Fd())) { //nolint:gosec // G115: File descriptors fit in int.
			return ErrNotInteractive
		}
	}

	return nil
}

// FormPrompter implements [Prompter] with huh forms.
type FormPrompter struct {
	theme      *huh.Theme
	input      io.Reader
	output     io.Writer
	accessible bool
}

// FormOpt configures a [FormPrompter].
type FormOpt func(*FormPrompter)

// WithAccessible enables huh's accessible mode, which uses plain line-based
// prompts instead of a full screen form.
func WithAccessible(accessible bool) FormOpt {
	return func(p *FormPrompter) {
		p.accessible = accessible
	}
}

// WithIO sets the input and output of the forms.
func WithIO(in io.Reader, out io.Writer) FormOpt {
	return func(p *FormPrompter) {
		p.input = in
		p.output = out
	}
}

// NewFormPrompter creates a new [FormPrompter] styled with t.
func NewFormPrompter(t *theme.Theme, opts ...FormOpt) *FormPrompter {
	p := &FormPrompter{
		theme:  theme.HuhTheme(t),
		input:  os.Stdin,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *FormPrompter) run(ctx context.Context, fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(true).
		WithTheme(p.theme).
		WithAccessible(p.accessible).
		WithInput(p.input).
		WithOutput(p.output)

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("run form: %w", err)
	}

	return nil
}

func huhOptions(options []Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		out = append(out, huh.NewOption(o.Label, o.Key).Selected(o.Selected))
	}

	return out
}

func preselected(options []Option) []string {
	var out []string
	for _, o := range options {
		if o.Selected {
			out = append(out, o.Key)
		}
	}

	return out
}

func atLeastOne(v []string) error {
	if len(v) == 0 {
		return ErrNothingSelected
	}

	return nil
}

// SelectCategories implements [Prompter].
func (p *FormPrompter) SelectCategories(ctx context.Context, options []Option) ([]string, error) {
	value := preselected(options)

	err := p.run(ctx,
		huh.NewMultiSelect[string]().
			Title("Which categories do you want rules from?").
			Description("Space to toggle, enter to continue.").
			Options(huhOptions(options)...).
			Validate(atLeastOne).
			Value(&value),
	)
	if err != nil {
		return nil, err
	}

	return value, nil
}

// SelectRules implements [Prompter].
func (p *FormPrompter) SelectRules(ctx context.Context, options []Option) ([]string, error) {
	value := preselected(options)

	err := p.run(ctx,
		huh.NewMultiSelect[string]().
			Title("Which rules do you want to generate?").
			Description("Dependencies are added automatically.").
			Options(huhOptions(options)...).
			Filterable(true).
			Height(min(len(options)+2, 20)).
			Validate(atLeastOne).
			Value(&value),
	)
	if err != nil {
		return nil, err
	}

	return value, nil
}

// ResolveConflict implements [Prompter].
func (p *FormPrompter) ResolveConflict(ctx context.Context, conflict resolver.ConflictInfo) (ConflictChoice, error) {
	choice := ChoiceExclude2

	err := p.run(ctx,
		huh.NewNote().
			Title("Conflict").
			Description(conflict.Reason),
		huh.NewSelect[ConflictChoice]().
			Title("How do you want to resolve it?").
			Options(
				huh.NewOption("Exclude "+conflict.RuleID1, ChoiceExclude1),
				huh.NewOption("Exclude "+conflict.RuleID2, ChoiceExclude2),
				huh.NewOption("Ignore (keep both)", ChoiceIgnore),
			).
			Value(&choice),
	)
	if err != nil {
		return "", err
	}

	return choice, nil
}

// Confirm implements [Prompter].
func (p *FormPrompter) Confirm(ctx context.Context, out *Outcome) (bool, error) {
	ok := true

	desc := strings.Join(out.IDs(), "\n")
	if len(out.Result.Warnings) > 0 {
		desc += "\n\nWarnings:\n" + strings.Join(out.Result.Warnings, "\n")
	}

	err := p.run(ctx,
		huh.NewConfirm().
			Title(fmt.Sprintf("Generate %d rules?", len(out.Final))).
			Description(desc).
			Affirmative("Generate").
			Negative("Cancel").
			Value(&ok),
	)
	if err != nil {
		return false, err
	}

	return ok, nil
}
