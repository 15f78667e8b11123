package render

import "path/filepath"

const (
	DefaultDir       = ".cursor/rules"
	DefaultExtension = ".mdc"
)

// Config configures how rules are rendered to files.
type Config struct {
	// Minify reduces the frontmatter of generated files to the fields read
	// by the editor: description, globs and alwaysApply.
	Minify *bool `json:"minify,omitempty" jsonschema:"title=Minify Frontmatter,default=true"`
	// Dir is the output directory, relative to the working directory.
	Dir string `json:"dir,omitempty" jsonschema:"title=Output Directory,default=.cursor/rules"`
	// Extension is appended to the rule ID to form the file name.
	Extension string `json:"extension,omitempty" jsonschema:"title=File Extension,default=.mdc,pattern=^\\.[A-Za-z0-9]+$"`
}

// NewConfig returns a [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes empty fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Minify == nil {
		minify := true
		c.Minify = &minify
	}

	if c.Dir == "" {
		c.Dir = DefaultDir
	}

	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
}

// Merge returns a copy of c with the non-empty fields of other applied.
func (c *Config) Merge(other *Config) *Config {
	out := *c
	if other == nil {
		return &out
	}

	if other.Minify != nil {
		minify := *other.Minify
		out.Minify = &minify
	}

	if other.Dir != "" {
		out.Dir = other.Dir
	}

	if other.Extension != "" {
		out.Extension = other.Extension
	}

	return &out
}

// Path returns the output path for a rule ID.
func (c *Config) Path(id string) string {
	return filepath.Join(c.Dir, id+c.Extension)
}
