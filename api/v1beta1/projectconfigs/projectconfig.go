// Package projectconfigs provides the ProjectConfig configuration type for ai-rules.
//
// A project config records the rules a repository generates, so that
// `ai-rules generate` can run without arguments.
package projectconfigs

import (
	"fmt"
	"path/filepath"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/rerades/ai-rules-cli/api"
	"github.com/rerades/ai-rules-cli/api/v1beta1"
	"github.com/rerades/ai-rules-cli/pkg/render"
	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen -kind project -o projectconfigs.v1beta1.json

// Kind is the kind of project configurations.
const Kind = "ProjectConfig"

var (
	// FileNames contains the valid names for project configuration files.
	FileNames = []string{
		".ai-rules.yaml",
		"ai-rules.yaml",
	}

	//go:embed projectconfigs.v1beta1.json
	projectSchemaJSON []byte

	// DefaultValidator validates project configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/projectconfigs.v1beta1.json", projectSchemaJSON)

	// ValidKinds contains the valid kind values for project configurations.
	ValidKinds = []string{Kind}

	// Compile-time interface checks.
	_ v1beta1.Object = (*ProjectConfig)(nil)
)

// ProjectConfig represents project-level configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type ProjectConfig struct {
	// Output overrides the global output settings for this project.
	Output *render.Config `json:"output,omitempty" jsonschema:"title=Output"`
	// Rules lists the rule IDs generated for this project.
	Rules            []string `json:"rules,omitempty" jsonschema:"title=Rules"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new [ProjectConfig].
func New() *ProjectConfig {
	return &ProjectConfig{
		TypeMeta: v1beta1.NewTypeMeta(Kind),
	}
}

// EnsureDefaults is a no-op. Unset output fields fall back to the global
// configuration, see [render.Config.Merge].
func (c *ProjectConfig) EnsureDefaults() {}

// Validate validates the project configuration.
func (c *ProjectConfig) Validate() error {
	err := c.Check(ValidKinds...)
	if err != nil {
		return fmt.Errorf("validate project config: %w", err)
	}

	return nil
}

func (c ProjectConfig) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the project config to YAML.
func (c ProjectConfig) MarshalYAML() ([]byte, error) {
	type alias ProjectConfig

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal project config: %w", err)
	}

	return b, nil
}

// Write writes the project config to path, replacing any existing file.
func (c ProjectConfig) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteFile(path, b)
	if err != nil {
		return fmt.Errorf("write project config: %w", err)
	}

	return nil
}

// Find searches for a project config file starting from targetPath
// and walking up the directory tree until the filesystem root.
// It checks for all [FileNames] in each directory.
// Returns the path to the config file if found, or empty string if not found.
func Find(targetPath string) (string, error) {
	path, err := api.FindConfigFile(targetPath, FileNames)
	if err != nil {
		return "", fmt.Errorf("find project config: %w", err)
	}

	return path, nil
}

// DefaultPath returns the path a new project config is written to in dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, FileNames[0])
}
