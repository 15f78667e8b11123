package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/api/v1beta1/projectconfigs"
	"github.com/rerades/ai-rules-cli/pkg/config"
	"github.com/rerades/ai-rules-cli/pkg/log"
	"github.com/rerades/ai-rules-cli/pkg/render"
	"github.com/rerades/ai-rules-cli/pkg/resolver"
	"github.com/rerades/ai-rules-cli/pkg/rules"
)

var ErrNothingToWatch = errors.New("no rule directories to watch; use --rules-dir or rules.paths")

type GenerateArgs struct {
	*RootArgs

	Out    string
	DryRun bool
	Prune  bool
	Watch  bool
}

func (ga *GenerateArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ga.Out, "out", "", "Output directory, overrides the configured output.dir")
	cmd.Flags().BoolVar(&ga.DryRun, "dry-run", false, "Print the planned changes without writing files")
	cmd.Flags().BoolVar(&ga.Prune, "prune", false, "Remove generated files of rules that are no longer selected")
	cmd.Flags().BoolVarP(&ga.Watch, "watch", "w", false, "Regenerate when rule files change")

	must(cmd.MarkFlagDirname("out"))
}

func NewGenerateCmd(ra *RootArgs) *cobra.Command {
	ga := &GenerateArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "generate [rule-id]...",
		Short: "Resolve a selection and write the rule files",
		Long: `Resolve a selection of rules and write one file per selected rule.

Without arguments, the rules listed in the project config (.ai-rules.yaml)
are used. Generation is aborted if the selection has conflicts.`,
		Example: `  ai-rules generate typescript.strict react.hooks
  ai-rules generate --dry-run
  ai-rules generate --watch --rules-dir ./rules`,
		Aliases:           []string{"gen"},
		ValidArgsFunction: completeRuleIDs(ra),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ga, args)
		},
	}

	ga.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

// generator resolves selections and writes them with a fixed output config.
type generator struct {
	out    io.Writer
	env    *env
	output *render.Config
	dryRun bool
	prune  bool
}

func runGenerate(cmd *cobra.Command, ga *GenerateArgs, ids []string) error {
	ctx := cmd.Context()

	e, err := ga.load()
	if err != nil {
		return err
	}

	output := e.cfg.Output

	pc, path, err := loadProject()
	if err != nil {
		return err
	}

	if pc != nil {
		output = output.Merge(pc.Output)

		if len(ids) == 0 {
			log.WithContext(ctx).InfoContext(ctx, "using project config", slog.String("path", path))

			ids = pc.Rules
		}
	}

	if len(ids) == 0 {
		return ErrNoSelection
	}

	g := &generator{
		out:    cmd.OutOrStdout(),
		env:    e,
		output: output.Merge(&render.Config{Dir: ga.Out}),
		dryRun: ga.DryRun,
		prune:  ga.Prune,
	}

	catalog, err := e.catalog(ctx)
	if err != nil {
		return err
	}

	err = g.generate(ctx, catalog, ids)
	if err != nil || !ga.Watch {
		return err
	}

	return g.watch(ctx, ids)
}

func loadProject() (*projectconfigs.ProjectConfig, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	return config.LoadProject(wd) //nolint:wrapcheck // Already wrapped.
}

// generate resolves ids, and writes or plans the final selection. It
// returns [ErrConflicts] without writing anything if there are conflicts.
func (g *generator) generate(ctx context.Context, catalog *rules.Catalog, ids []string) error {
	res := catalog.Resolver().Resolve(ids)
	p := g.env.printer(g.out)

	p.Resolution(res)
	mustN(fmt.Fprintln(g.out))

	if res.HasConflicts() {
		return ErrConflicts
	}

	return g.write(ctx, catalog, res.FinalSelections)
}

// write plans and writes selections that have already been resolved.
func (g *generator) write(ctx context.Context, catalog *rules.Catalog, selections []resolver.RuleSelection) error {
	p := g.env.printer(g.out)
	r := render.New(catalog, g.output)

	plan, err := r.Plan(ctx, selections)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	if g.dryRun {
		p.Plan(plan)

		return nil
	}

	sum, err := r.Write(ctx, plan, g.prune)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	p.Summary(sum)

	return nil
}

// watch regenerates whenever a rule directory changes, until ctx is done.
// Errors while regenerating are logged, not returned.
func (g *generator) watch(ctx context.Context, ids []string) error {
	logger := log.WithContext(ctx)

	dirs := g.env.cfg.Rules.Dirs()
	if len(dirs) == 0 {
		return ErrNothingToWatch
	}

	w, err := rules.NewWatcher(dirs)
	if err != nil {
		return fmt.Errorf("watch rules: %w", err)
	}

	defer func() {
		err := w.Close()
		if err != nil {
			logger.ErrorContext(ctx, "close watcher", slog.Any("err", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()

	logger.InfoContext(ctx, "watching for changes", slog.Any("dirs", dirs))

	for changed := range w.Changes() {
		logger.InfoContext(ctx, "rules changed, regenerating", slog.Any("files", changed))

		catalog, err := g.env.catalog(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "reload rules", slog.Any("err", err))
			continue
		}

		err = g.generate(ctx, catalog, ids)
		if err != nil {
			logger.ErrorContext(ctx, "regenerate", slog.Any("err", err))
		}
	}

	err = <-errCh
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch rules: %w", err)
	}

	return nil
}
