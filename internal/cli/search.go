package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/pkg/rules"
)

func NewSearchCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Fuzzy search rules by ID, title and tags",
		Example: `  ai-rules search tsstrict`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ra.load()
			if err != nil {
				return err
			}

			catalog, err := e.catalog(cmd.Context())
			if err != nil {
				return err
			}

			found := catalog.Search(strings.Join(args, " "))
			rules.SortRules(found)

			e.printer(cmd.OutOrStdout()).Rules(found)

			return nil
		},
	}

	bindEnvVars(cmd)

	return cmd
}
