package rules

// Config configures where rules are loaded from.
type Config struct {
	// Builtin enables the rules embedded in the binary.
	Builtin *bool `json:"builtin,omitempty" jsonschema:"title=Builtin Rules,default=true"`
	// Paths lists additional directories containing rule documents. Rules in
	// later directories override builtin rules and earlier directories.
	Paths []string `json:"paths,omitempty" jsonschema:"title=Rule Paths"`
}

// NewConfig returns a [Config] with default values.
func NewConfig() *Config {
	c := &Config{}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Builtin == nil {
		builtin := true
		c.Builtin = &builtin
	}
}

// Sources returns the configured sources, builtin rules first.
func (c *Config) Sources() []Source {
	var out []Source

	if c.Builtin == nil || *c.Builtin {
		out = append(out, Builtin())
	}

	for _, p := range c.Paths {
		out = append(out, DirSource(p))
	}

	return out
}

// Dirs returns the directories on disk backing the configured sources.
func (c *Config) Dirs() []string {
	var out []string
	for _, src := range c.Sources() {
		if src.Dir != "" {
			out = append(out, src.Dir)
		}
	}

	return out
}
