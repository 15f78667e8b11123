package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type ShowArgs struct {
	*RootArgs

	Raw bool
}

func NewShowCmd(ra *RootArgs) *cobra.Command {
	sa := &ShowArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:               "show <rule-id>",
		Short:             "Print a rule document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRuleIDs(ra),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, sa, args[0])
		},
	}

	cmd.Flags().BoolVar(&sa.Raw, "raw", false, "Print the document without highlighting and details")

	bindEnvVars(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, sa *ShowArgs, id string) error {
	e, err := sa.load()
	if err != nil {
		return err
	}

	catalog, err := e.catalog(cmd.Context())
	if err != nil {
		return err
	}

	r, ok := catalog.Get(id)
	if !ok {
		return fmt.Errorf("rule %q not found", id)
	}

	doc, err := r.Document()
	if err != nil {
		return fmt.Errorf("render rule %q: %w", id, err)
	}

	w := cmd.OutOrStdout()

	if sa.Raw || !isTerminal(w) {
		_, err = w.Write(doc)
		if err != nil {
			return fmt.Errorf("write rule: %w", err)
		}

		return nil
	}

	e.printer(w).RuleDetails(r)
	mustN(fmt.Fprintln(w))

	err = e.theme.Highlight(w, string(doc), "markdown")
	if err != nil {
		return fmt.Errorf("highlight rule: %w", err)
	}

	return nil
}
