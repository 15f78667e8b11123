package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/api/v1beta1/projectconfigs"
	"github.com/rerades/ai-rules-cli/pkg/log"
	"github.com/rerades/ai-rules-cli/pkg/render"
	"github.com/rerades/ai-rules-cli/pkg/rules"
	"github.com/rerades/ai-rules-cli/pkg/wizard"
)

const logBufferSize = 100

type InitArgs struct {
	*RootArgs

	Out        string
	Accessible bool
	DryRun     bool
}

func NewInitCmd(ra *RootArgs) *cobra.Command {
	ia := &InitArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Pick rules interactively, generate them and save the selection",
		Long: `Pick rule categories and rules interactively, settle conflicts, and
generate the selected rules. The final selection is saved to the project
config (.ai-rules.yaml), so that later runs of "ai-rules generate" can
regenerate it without arguments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, ia)
		},
	}

	cmd.Flags().StringVar(&ia.Out, "out", "", "Output directory, overrides the configured output.dir")
	cmd.Flags().BoolVar(&ia.Accessible, "accessible", false, "Use plain line-based prompts")
	cmd.Flags().BoolVar(&ia.DryRun, "dry-run", false, "Print the planned changes without writing files")

	must(cmd.MarkFlagDirname("out"))

	bindEnvVars(cmd)

	return cmd
}

func runInit(cmd *cobra.Command, ia *InitArgs) error {
	ctx := cmd.Context()

	if !ia.Accessible {
		err := wizard.CheckInteractive(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("%w; use --accessible or pass rule IDs to generate", err)
		}
	}

	e, err := ia.load()
	if err != nil {
		return err
	}

	pc, pcPath, err := loadProject()
	if err != nil {
		return err
	}

	if pc == nil {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		pc = projectconfigs.New()
		pcPath = projectconfigs.DefaultPath(wd)
	}

	outcome, catalog, err := ia.runWizard(cmd, e)
	if err != nil {
		return err
	}

	g := &generator{
		out:    cmd.OutOrStdout(),
		env:    e,
		output: e.cfg.Output.Merge(pc.Output).Merge(&render.Config{Dir: ia.Out}),
		dryRun: ia.DryRun,
	}

	p := e.printer(cmd.OutOrStdout())
	p.Resolution(outcome.Result)
	mustN(fmt.Fprintln(cmd.OutOrStdout()))

	if len(outcome.Excluded) > 0 {
		log.WithContext(ctx).InfoContext(ctx, "excluded conflicting rules", slog.Any("rules", outcome.Excluded))
	}

	err = g.write(ctx, catalog, outcome.Final)
	if err != nil {
		return err
	}

	if ia.DryRun {
		return nil
	}

	pc.Rules = outcome.IDs()

	err = pc.Write(pcPath)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	log.WithContext(ctx).InfoContext(ctx, "saved selection", slog.String("path", pcPath))

	return nil
}

// runWizard loads the catalog and runs the wizard. Logs are buffered while
// the forms own the terminal, and written to stderr afterwards.
func (ia *InitArgs) runWizard(cmd *cobra.Command, e *env) (*wizard.Outcome, *rules.Catalog, error) {
	ctx := cmd.Context()

	logBuf := log.NewCircularBuffer(logBufferSize)

	logHandler, err := log.CreateHandlerWithStrings(logBuf, ia.LogLevel, ia.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("create log handler: %w", err)
	}

	prev := slog.Default()
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	defer func() {
		slog.SetDefault(prev)
		flushLogs(cmd, logBuf)
	}()

	ctx = log.NewContext(ctx, logger)

	catalog, err := ia.loadCatalog(ctx, e)
	if err != nil {
		return nil, nil, err
	}

	prompter := wizard.NewFormPrompter(e.theme,
		wizard.WithIO(cmd.InOrStdin(), cmd.ErrOrStderr()),
		wizard.WithAccessible(ia.Accessible),
	)

	outcome, err := wizard.New(catalog, prompter).Run(ctx)
	if errors.Is(err, wizard.ErrAborted) {
		logger.InfoContext(ctx, "aborted, nothing was written")
	}

	if err != nil {
		return nil, nil, fmt.Errorf("wizard: %w", err)
	}

	return outcome, catalog, nil
}

func (ia *InitArgs) loadCatalog(ctx context.Context, e *env) (*rules.Catalog, error) {
	if ia.Accessible {
		return e.catalog(ctx)
	}

	var (
		catalog *rules.Catalog
		err     error
	)

	spinErr := spinner.New().
		Title("Loading rules...").
		Context(ctx).
		Action(func() {
			catalog, err = e.catalog(ctx)
		}).
		Run()
	if spinErr != nil {
		return nil, fmt.Errorf("spinner: %w", spinErr)
	}

	return catalog, err
}

func flushLogs(cmd *cobra.Command, buf *log.CircularBuffer) {
	slog.Debug("flush logs to console",
		slog.Int("count", buf.Size()),
		slog.Int("max", buf.Capacity()),
		slog.Bool("truncated", buf.IsFull()),
	)

	_, err := buf.WriteTo(cmd.ErrOrStderr())
	if err != nil {
		panic(err)
	}
}
