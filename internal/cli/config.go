package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rerades/ai-rules-cli/api/v1beta1/configs"
	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

type ConfigArgs struct {
	*RootArgs

	Write bool
	Force bool
	Path  bool
}

func (ca *ConfigArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ca.Write, "write", false, "Write the default configuration file")
	cmd.Flags().BoolVar(&ca.Force, "force", false, "Back up and replace an existing configuration file")
	cmd.Flags().BoolVar(&ca.Path, "path", false, "Print the configuration file path")

	cmd.MarkFlagsMutuallyExclusive("write", "path")
}

func NewConfigCmd(ra *RootArgs) *cobra.Command {
	ca := &ConfigArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
		Long: `Print the effective configuration, with defaults applied.

Use --write to create the default configuration file. An existing file is
kept unless --force is set, in which case it is backed up first.`,
		Example: `  ai-rules config
  ai-rules config --write --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd, ca)
		},
	}

	ca.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func runConfig(cmd *cobra.Command, ca *ConfigArgs) error {
	path := ca.configPath()
	w := cmd.OutOrStdout()

	switch {
	case ca.Path:
		mustN(fmt.Fprintln(w, path))

		return nil

	case ca.Write:
		err := configs.WriteDefault(path, ca.Force)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		mustN(fmt.Fprintf(w, "wrote %s\n", path))

		return nil

	case ca.Force:
		return errors.New("--force requires --write")
	}

	e, err := ca.load()
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(e.cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if !isTerminal(w) {
		_, err = w.Write(b)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		return nil
	}

	err = e.theme.Highlight(w, string(b), "yaml")
	if err != nil {
		return fmt.Errorf("highlight config: %w", err)
	}

	return nil
}
