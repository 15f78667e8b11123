// Package ui contains presentation settings shared by ai-rules commands.
package ui

// DefaultTheme is the chroma style used when no theme is configured.
const DefaultTheme = "github"

// Config contains presentation configuration.
type Config struct {
	// Theme is a chroma style name, or one of "auto", "dark" and "light".
	Theme string `json:"theme,omitempty" jsonschema:"title=Theme"`
}

// NewConfig returns a [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes empty fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
}
