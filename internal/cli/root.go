// Package cli implements the ai-rules command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/pkg/log"
)

const (
	cmdName = "ai-rules"
	cmdDesc = `Resolve, generate and manage AI assistant rule files.`

	cmdExamples = `  # List the available rules:
  ai-rules list

  # Check what a selection resolves to:
  ai-rules check typescript.strict react.hooks

  # Generate rule files for a selection:
  ai-rules generate typescript.strict react.hooks

  # Pick rules interactively and remember the selection:
  ai-rules init

  # Regenerate from the project config whenever a rule changes:
  ai-rules generate --watch`
)

// RootArgs holds the persistent flags shared by all commands.
type RootArgs struct {
	LogLevel   string
	LogFormat  string
	ConfigPath string
	RulesDirs  []string
	NoBuiltin  bool
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	flags.StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	flags.StringVar(&ra.ConfigPath, "config", "", "Path to the ai-rules configuration file")
	flags.StringSliceVar(&ra.RulesDirs, "rules-dir", nil, "Additional directory to load rules from (repeatable)")
	flags.BoolVar(&ra.NoBuiltin, "no-builtin", false, "Do not load the builtin rules")

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.MarkPersistentFlagFilename("config", "yaml", "yml"))
	must(cmd.MarkPersistentFlagDirname("rules-dir"))
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging(args),
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewListCmd(args),
		NewSearchCmd(args),
		NewShowCmd(args),
		NewCheckCmd(args),
		NewGenerateCmd(args),
		NewInitCmd(args),
		NewValidateCmd(args),
		NewConfigCmd(args),
		NewVersionCmd(),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		logger := slog.New(logHandler)
		slog.SetDefault(logger)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cmd.SetContext(log.NewContext(ctx, logger))

		return nil
	}
}
