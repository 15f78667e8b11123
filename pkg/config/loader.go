package config

import (
	"bytes"
	"log/slog"
	"regexp"

	"github.com/rerades/ai-rules-cli/api"
	"github.com/rerades/ai-rules-cli/api/v1beta1"
	"github.com/rerades/ai-rules-cli/pkg/ui/theme"
	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

// themeRe matches `theme: <value>` inside a top-level `ui:` block. It is only
// used when the data cannot be parsed as YAML.
var themeRe = regexp.MustCompile(`(?m)^ui:[ \t]*(?:#.*)?\n(?:[ \t]+.*\n)*?[ \t]+theme:[ \t]*["']?([^"'\s#]+)`)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator    Validator
	extractTheme bool
	colored      bool
}

// WithValidator replaces the default validator. Passing nil disables schema
// validation.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// WithThemeFromData reads `ui.theme` from the config data, so that errors
// about the config itself can be styled with the configured theme.
func WithThemeFromData() LoaderOpt {
	return func(o *loaderOptions) {
		o.extractTheme = true
	}
}

// WithColoredErrors enables ANSI colors in annotated YAML errors.
func WithColoredErrors(colored bool) LoaderOpt {
	return func(o *loaderOptions) {
		o.colored = colored
	}
}

// Loader validates, decodes and defaults a configuration of kind T.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	theme     *theme.Theme
	yamlError *yaml.ErrorWrapper
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., configs.New).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{
		validator: defaultValidator,
	}
	for _, opt := range opts {
		opt(options)
	}

	t := theme.Default
	if options.extractTheme {
		t = themeFromData(data)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: options.validator,
		theme:     t,
		yamlError: yaml.NewErrorWrapper(
			yaml.WithSource(data),
			yaml.WithColor(options.colored),
		),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	return NewLoaderFromBytes(data, newFunc, defaultValidator, opts...), nil
}

// Validate checks the data against the schema. Errors point at the
// offending location in the source.
func (l *Loader[T]) Validate() error {
	var doc any

	err := yaml.NewDecoder(bytes.NewReader(l.data)).Decode(&doc)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator == nil {
		return nil
	}

	return l.yamlError.Wrap(l.validator.Validate(doc))
}

// Load decodes the data into a new T, fills in defaults, and checks its
// apiVersion and kind.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	var zero T

	cfg := l.newFunc()

	err := yaml.NewDecoder(bytes.NewReader(l.data)).Decode(cfg)
	if err != nil {
		return zero, l.yamlError.Wrap(err)
	}

	cfg.EnsureDefaults()

	err = cfg.Validate()
	if err != nil {
		return zero, err //nolint:wrapcheck // Already wrapped by the config type.
	}

	return cfg, nil
}

// GetTheme returns the theme for error formatting.
func (l *Loader[T]) GetTheme() *theme.Theme {
	return l.theme
}

func themeFromData(data []byte) *theme.Theme {
	var name string

	path := yaml.NewPathBuilder().Root().Child("ui").Child("theme").Build()

	err := path.Read(bytes.NewReader(data), &name)
	if err == nil && name != "" {
		return theme.New(name)
	}

	// The data may not be valid YAML, which is exactly when a styled error
	// is wanted. Fall back to a plain text match.
	if m := themeRe.FindSubmatch(data); m != nil {
		slog.Debug("read theme from invalid config", slog.String("theme", string(m[1])))

		return theme.New(string(m[1]))
	}

	slog.Debug("no theme in config, using default")

	return theme.Default
}
