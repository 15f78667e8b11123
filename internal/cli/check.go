package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

var outputFormats = []string{"text", "json", "yaml"}

type CheckArgs struct {
	*RootArgs

	Output string
}

func NewCheckCmd(ra *RootArgs) *cobra.Command {
	ca := &CheckArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "check <rule-id>...",
		Short: "Show how a selection of rules resolves",
		Long: `Show the dependencies, conflicts, superseded rules and warnings for a
selection of rules. Conflicts are reported but never cause a failure.`,
		Example:           `  ai-rules check typescript.strict typescript.loose --output json`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeRuleIDs(ra),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, ca, args)
		},
	}

	cmd.Flags().StringVarP(&ca.Output, "output", "o", "text",
		fmt.Sprintf("Output format, one of: %v", outputFormats))
	must(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(outputFormats, cobra.ShellCompDirectiveNoFileComp),
	))

	bindEnvVars(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, ca *CheckArgs, ids []string) error {
	if !slices.Contains(outputFormats, ca.Output) {
		return fmt.Errorf("invalid argument %q for --output, expected one of %v", ca.Output, outputFormats)
	}

	e, err := ca.load()
	if err != nil {
		return err
	}

	catalog, err := e.catalog(cmd.Context())
	if err != nil {
		return err
	}

	res := catalog.Resolver().Resolve(ids)
	w := cmd.OutOrStdout()

	switch ca.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err = enc.Encode(res)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

	case "yaml":
		b, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		_, err = w.Write(b)
		if err != nil {
			return fmt.Errorf("write result: %w", err)
		}

	default:
		e.printer(w).Resolution(res)
	}

	return nil
}
