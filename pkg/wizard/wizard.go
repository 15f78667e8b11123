// Package wizard implements the interactive rule selection flow.
//
// The flow is:
//  1. select categories,
//  2. select rules within those categories,
//  3. resolve the selection,
//  4. settle every conflict by excluding one side or ignoring it,
//  5. confirm the final selection.
//
// Prompts are issued through a [Prompter], so the flow can be driven by
// the huh based [FormPrompter] or by a scripted implementation.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rerades/ai-rules-cli/pkg/log"
	"github.com/rerades/ai-rules-cli/pkg/report"
	"github.com/rerades/ai-rules-cli/pkg/resolver"
	"github.com/rerades/ai-rules-cli/pkg/rules"
)

var (
	// ErrNotInteractive is returned when stdin or stdout is not a terminal.
	ErrNotInteractive = errors.New("not running in an interactive terminal")
	// ErrAborted is returned when the user cancels a form or declines the final confirmation.
	ErrAborted = errors.New("aborted")
	// ErrNothingSelected is returned when no categories or rules were picked.
	ErrNothingSelected = errors.New("no rules selected")
)

// ConflictChoice is the answer to a conflict prompt.
type ConflictChoice string

const (
	// ChoiceExclude1 removes the first rule of the conflict.
	ChoiceExclude1 ConflictChoice = "exclude1"
	// ChoiceExclude2 removes the second rule of the conflict.
	ChoiceExclude2 ConflictChoice = "exclude2"
	// ChoiceIgnore keeps both rules.
	ChoiceIgnore ConflictChoice = "ignore"
)

// Option is a selectable item.
type Option struct {
	Key         string
	Label       string
	Description string
	Selected    bool
}

// Prompter asks the user questions.
type Prompter interface {
	SelectCategories(ctx context.Context, options []Option) ([]string, error)
	SelectRules(ctx context.Context, options []Option) ([]string, error)
	ResolveConflict(ctx context.Context, conflict resolver.ConflictInfo) (ConflictChoice, error)
	Confirm(ctx context.Context, result *Outcome) (bool, error)
}

// Outcome is the result of a completed wizard run.
type Outcome struct {
	// Result is the unmodified resolution of Selected.
	Result *resolver.Result
	// Selected holds the rule IDs picked by the user.
	Selected []string
	// Final holds the selections remaining after conflict handling.
	Final []resolver.RuleSelection
	// Excluded holds the rule IDs removed while settling conflicts.
	Excluded []string
}

// IDs returns the rule IDs of [Outcome.Final].
func (o *Outcome) IDs() []string {
	ids := make([]string, 0, len(o.Final))
	for _, s := range o.Final {
		ids = append(ids, s.RuleID)
	}

	return ids
}

// Wizard runs the interactive selection flow over a catalog.
type Wizard struct {
	catalog  *rules.Catalog
	prompter Prompter
}

// New creates a new [Wizard].
func New(catalog *rules.Catalog, prompter Prompter) *Wizard {
	return &Wizard{
		catalog:  catalog,
		prompter: prompter,
	}
}

// Run executes the wizard. It returns [ErrAborted] if the user declines the
// final confirmation, and [ErrNothingSelected] if no rules were picked.
func (w *Wizard) Run(ctx context.Context) (*Outcome, error) {
	logger := log.WithContext(ctx)

	categories, err := w.prompter.SelectCategories(ctx, w.categoryOptions())
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	if len(categories) == 0 {
		return nil, ErrNothingSelected
	}

	selected, err := w.prompter.SelectRules(ctx, w.ruleOptions(categories))
	if err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}

	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}

	out := &Outcome{
		Selected: selected,
		Result:   w.catalog.Resolver().Resolve(selected),
	}
	out.Final = slices.Clone(out.Result.FinalSelections)

	for _, c := range out.Result.Conflicts {
		// A conflict with an already excluded rule is settled.
		if slices.Contains(out.Excluded, c.RuleID1) || slices.Contains(out.Excluded, c.RuleID2) {
			continue
		}

		choice, err := w.prompter.ResolveConflict(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("resolve conflict: %w", err)
		}

		logger.DebugContext(ctx, "conflict settled",
			slog.String("rule1", c.RuleID1),
			slog.String("rule2", c.RuleID2),
			slog.String("choice", string(choice)),
		)

		switch choice {
		case ChoiceExclude1:
			out.Final = resolver.Exclude(out.Final, c.RuleID1)
			out.Excluded = append(out.Excluded, c.RuleID1)
		case ChoiceExclude2:
			out.Final = resolver.Exclude(out.Final, c.RuleID2)
			out.Excluded = append(out.Excluded, c.RuleID2)
		case ChoiceIgnore:
		default:
			return nil, fmt.Errorf("resolve conflict: unknown choice %q", choice)
		}
	}

	ok, err := w.prompter.Confirm(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	if !ok {
		return nil, ErrAborted
	}

	return out, nil
}

func (w *Wizard) categoryOptions() []Option {
	cats := w.catalog.Categories()
	opts := make([]Option, 0, len(cats))

	for _, cat := range cats {
		desc := "1 rule"
		if n := len(w.catalog.ByCategory(cat)); n != 1 {
			desc = fmt.Sprintf("%d rules", n)
		}

		opts = append(opts, Option{
			Key:         cat,
			Label:       report.CategoryTitle(cat),
			Description: desc,
		})
	}

	return opts
}

func (w *Wizard) ruleOptions(categories []string) []Option {
	var opts []Option

	for _, cat := range categories {
		for _, r := range w.catalog.ByCategory(cat) {
			opts = append(opts, Option{
				Key:         r.ID,
				Label:       fmt.Sprintf("%s (%s)", r.Title, r.ID),
				Description: r.Description,
				Selected:    r.AlwaysApply,
			})
		}
	}

	return opts
}
