package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rerades/ai-rules-cli/api/v1beta1/configs"
	"github.com/rerades/ai-rules-cli/pkg/config"
	"github.com/rerades/ai-rules-cli/pkg/log"
	"github.com/rerades/ai-rules-cli/pkg/report"
	"github.com/rerades/ai-rules-cli/pkg/rules"
	"github.com/rerades/ai-rules-cli/pkg/ui/theme"
)

// env is the loaded configuration shared by the subcommands.
type env struct {
	cfg        *configs.Config
	theme      *theme.Theme
	configPath string
}

func (ra *RootArgs) configPath() string {
	if ra.ConfigPath != "" {
		return ra.ConfigPath
	}

	return configs.GetPath()
}

// load reads the global configuration and applies the rule source flags.
func (ra *RootArgs) load() (*env, error) {
	path := ra.configPath()

	cfg, _, err := config.LoadGlobal(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	if ra.NoBuiltin {
		builtin := false
		cfg.Rules.Builtin = &builtin
	}

	cfg.Rules.Paths = append(cfg.Rules.Paths, ra.RulesDirs...)

	return &env{
		cfg:        cfg,
		theme:      theme.New(cfg.UI.Theme),
		configPath: path,
	}, nil
}

// catalog loads the rules from all configured sources.
func (e *env) catalog(ctx context.Context) (*rules.Catalog, error) {
	catalog, err := rules.Load(ctx, e.cfg.Rules.Sources()...)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	log.WithContext(ctx).DebugContext(ctx, "loaded catalog",
		slog.Int("rules", catalog.Len()),
		slog.Int("problems", len(catalog.Problems())),
	)

	return catalog, nil
}

// printer returns a [report.Printer] that styles output on terminals.
func (e *env) printer(w io.Writer) *report.Printer {
	opts := []report.Opt{
		report.WithTheme(e.theme),
		report.WithStyle(isTerminal(w)),
	}

	if f, ok := w.(interface{ Fd() uintptr }); ok {
		//nolint:gosec // G115: File descriptors fit in an int.
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil {
			opts = append(opts, report.WithWidth(min(width, 120)))
		}
	}

	return report.New(w, opts...)
}

func isTerminal(w any) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	//nolint:gosec // G115: File descriptors fit in an int.
	return term.IsTerminal(int(f.Fd()))
}

// completeRuleIDs completes rule IDs from the configured catalog.
func completeRuleIDs(ra *RootArgs) func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
		e, err := ra.load()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		catalog, err := e.catalog(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		completions := make([]cobra.Completion, 0, catalog.Len())
		for _, r := range catalog.Rules() {
			if slices.Contains(args, r.ID) {
				continue
			}

			completions = append(completions, cobra.CompletionWithDesc(r.ID, r.Title))
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}
