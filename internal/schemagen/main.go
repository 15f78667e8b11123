// Command schemagen writes the JSON schema of an ai-rules configuration kind.
//
// It is run via go:generate from the package that embeds the schema.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/rerades/ai-rules-cli/api/v1beta1/configs"
	"github.com/rerades/ai-rules-cli/api/v1beta1/projectconfigs"
	"github.com/rerades/ai-rules-cli/pkg/rules"
	"github.com/rerades/ai-rules-cli/pkg/schema"
)

const schemaBaseURL = "https://github.com/rerades/ai-rules-cli/"

type target struct {
	v    any
	id   string
	dirs []string
}

var targets = map[string]target{
	"config": {
		v:    configs.New(),
		id:   schemaBaseURL + "api/v1beta1/configs/config",
		dirs: []string{"api/v1beta1", "api/v1beta1/configs", "pkg/rules", "pkg/render", "pkg/ui"},
	},
	"project": {
		v:    projectconfigs.New(),
		id:   schemaBaseURL + "api/v1beta1/projectconfigs/project-config",
		dirs: []string{"api/v1beta1", "api/v1beta1/projectconfigs", "pkg/render"},
	},
	"rule": {
		v:    &rules.Metadata{},
		id:   schemaBaseURL + "pkg/rules/metadata",
		dirs: []string{"pkg/rules"},
	},
}

func main() {
	kind := pflag.StringP("kind", "k", "config", "Kind of schema to generate: config, project or rule")
	out := pflag.StringP("output", "o", "schema.json", "Output file for the generated schema")
	pflag.Parse()

	err := run(*kind, *out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schemagen: %v\n", err)
		os.Exit(1)
	}
}

func run(kind, out string) error {
	tgt, ok := targets[kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}

	outPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	// Comments are looked up relative to the module root.
	root, err := moduleRoot()
	if err != nil {
		return err
	}

	err = os.Chdir(root)
	if err != nil {
		return fmt.Errorf("change to module root: %w", err)
	}

	data, err := schema.NewGenerator(tgt.v,
		schema.WithID(tgt.id),
		schema.WithComments(tgt.dirs...),
	).Generate()
	if err != nil {
		return fmt.Errorf("generate JSON schema: %w", err)
	}

	err = os.WriteFile(outPath, data, 0o644) //nolint:gosec // G306: Schemas are public.
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		_, err := os.Stat(filepath.Join(dir, "go.mod"))
		if err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}

		dir = parent
	}
}
