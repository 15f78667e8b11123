// Package configs provides the global Config configuration type for ai-rules.
package configs

import (
	"fmt"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/rerades/ai-rules-cli/api"
	"github.com/rerades/ai-rules-cli/api/v1beta1"
	"github.com/rerades/ai-rules-cli/pkg/render"
	"github.com/rerades/ai-rules-cli/pkg/rules"
	"github.com/rerades/ai-rules-cli/pkg/ui"
	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen -kind config -o configs.v1beta1.json

// Kind is the kind of the global configuration.
const Kind = "Configuration"

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed configs.v1beta1.json
	schemaJSON []byte

	// DefaultValidator validates global configuration against the JSON schema.
	DefaultValidator = yaml.MustNewValidator("/configs.v1beta1.json", schemaJSON)

	// ValidKinds contains the valid kind values for global configurations.
	ValidKinds = []string{Kind}

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)
)

// Config represents the global ai-rules configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Rules configures where rule documents are loaded from.
	Rules *rules.Config `json:"rules,omitempty" jsonschema:"title=Rules"`
	// Output configures the generated rule files.
	Output *render.Config `json:"output,omitempty" jsonschema:"title=Output"`
	// UI configures terminal output.
	UI               *ui.Config `json:"ui,omitempty" jsonschema:"title=UI"`
	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new global [Config] with default values.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.NewTypeMeta(Kind),
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Rules == nil {
		c.Rules = rules.NewConfig()
	} else {
		c.Rules.EnsureDefaults()
	}

	if c.Output == nil {
		c.Output = render.NewConfig()
	} else {
		c.Output.EnsureDefaults()
	}

	if c.UI == nil {
		c.UI = ui.NewConfig()
	} else {
		c.UI.EnsureDefaults()
	}
}

// Validate checks the type metadata of the configuration.
func (c *Config) Validate() error {
	err := c.Check(ValidKinds...)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default configuration.
func DefaultYAML() []byte {
	return defaultConfigYAML
}

// GetPath returns the path to the global configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}
