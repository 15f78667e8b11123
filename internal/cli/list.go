package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/pkg/rules"
)

type ListArgs struct {
	*RootArgs

	Category string
	Filter   string
}

func (la *ListArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&la.Category, "category", "c", "", "Only list rules in this category")
	cmd.Flags().StringVarP(&la.Filter, "filter", "f", "",
		"CEL expression rules must match, e.g. 'tags.exists(t, t == \"style\")'")
}

func NewListCmd(ra *RootArgs) *cobra.Command {
	la := &ListArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available rules",
		Example: `  ai-rules list --category typescript
  ai-rules list --filter 'priority >= 80 && !alwaysApply'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, la)
		},
	}

	la.AddFlags(cmd)
	must(cmd.RegisterFlagCompletionFunc("category", completeCategories(ra)))

	bindEnvVars(cmd)

	return cmd
}

func runList(cmd *cobra.Command, la *ListArgs) error {
	e, err := la.load()
	if err != nil {
		return err
	}

	catalog, err := e.catalog(cmd.Context())
	if err != nil {
		return err
	}

	list := catalog.Rules()
	if la.Category != "" {
		list = catalog.ByCategory(la.Category)
	}

	if la.Filter != "" {
		f, err := rules.NewFilter(la.Filter)
		if err != nil {
			return fmt.Errorf("parse filter: %w", err)
		}

		list, err = f.Apply(list)
		if err != nil {
			return fmt.Errorf("apply filter: %w", err)
		}
	}

	e.printer(cmd.OutOrStdout()).Rules(list)

	if problems := catalog.Problems(); len(problems) > 0 {
		e.printer(cmd.ErrOrStderr()).Problems(problems)
	}

	return nil
}

func completeCategories(ra *RootArgs) func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
		e, err := ra.load()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		catalog, err := e.catalog(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return catalog.Categories(), cobra.ShellCompDirectiveNoFileComp
	}
}
