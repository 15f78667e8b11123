package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/api"
	"github.com/rerades/ai-rules-cli/pkg/log"
	"github.com/rerades/ai-rules-cli/pkg/rules"
)

func NewValidateCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path]...",
		Short: "Validate rule documents",
		Long: `Validate rule documents against the rule schema, and report references
to rules that do not exist.

Paths may be rule files or directories. Without paths, all configured rule
sources are validated. References are resolved against the configured
sources and the validated paths.`,
		Example: `  ai-rules validate ./rules
  ai-rules validate --no-builtin ./rules/go/errors.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, ra, args)
		},
	}

	bindEnvVars(cmd)

	return cmd
}

func runValidate(cmd *cobra.Command, ra *RootArgs, paths []string) error {
	ctx := cmd.Context()

	e, err := ra.load()
	if err != nil {
		return err
	}

	base, err := e.catalog(ctx)
	if err != nil {
		return err
	}

	checked, problems := base.Rules(), base.Problems()
	if len(paths) > 0 {
		checked, problems, err = loadPaths(ctx, paths)
		if err != nil {
			return err
		}
	}

	ids := make(map[string]struct{}, len(checked))
	for _, r := range checked {
		ids[r.ID] = struct{}{}
	}

	dangling := rules.DanglingReferences(checked, func(id string) bool {
		_, inBase := base.Get(id)
		_, inChecked := ids[id]

		return inBase || inChecked
	})

	out := e.printer(cmd.OutOrStdout())
	out.Problems(problems)
	out.References(dangling)

	log.WithContext(ctx).InfoContext(ctx, "validated rules",
		slog.Int("rules", len(checked)),
		slog.Int("invalid", len(problems)),
		slog.Int("dangling", len(dangling)),
	)

	if len(problems) > 0 || len(dangling) > 0 {
		return fmt.Errorf("%w: %d invalid, %d dangling references", ErrInvalidRules, len(problems), len(dangling))
	}

	mustN(fmt.Fprintf(cmd.OutOrStdout(), "%d rules valid\n", len(checked)))

	return nil
}

// loadPaths parses rule files and directories. Unlike catalog loading,
// duplicates are kept, so that every given file is checked.
func loadPaths(ctx context.Context, paths []string) ([]*rules.Rule, []rules.Problem, error) {
	var (
		list     []*rules.Rule
		problems []rules.Problem
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("validate %s: %w", path, err)
		}

		if info.IsDir() {
			c, err := rules.Load(ctx, rules.DirSource(path))
			if err != nil {
				return nil, nil, err //nolint:wrapcheck // Already wrapped.
			}

			list = append(list, c.Rules()...)
			problems = append(problems, c.Problems()...)

			continue
		}

		data, err := api.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("validate %s: %w", path, err)
		}

		r, err := rules.Parse(path, data)
		if err != nil {
			problems = append(problems, rules.Problem{Err: err, Source: "file", Path: path})
			continue
		}

		list = append(list, r)
	}

	return list, problems, nil
}
