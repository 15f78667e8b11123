package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/rerades/ai-rules-cli/api/v1beta1/configs"
	"github.com/rerades/ai-rules-cli/api/v1beta1/projectconfigs"
	"github.com/rerades/ai-rules-cli/pkg/ui/theme"
)

// LoadGlobal loads the global configuration from path. A missing file is
// not an error; the defaults are returned instead. The returned theme is
// read from the config data, and is usable even when loading fails.
func LoadGlobal(path string, opts ...LoaderOpt) (*configs.Config, *theme.Theme, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", slog.String("path", path))

		return configs.New(), theme.Default, nil
	}

	opts = append([]LoaderOpt{WithThemeFromData()}, opts...)

	cl, err := NewLoaderFromFile(path, configs.New, configs.DefaultValidator, opts...)
	if err != nil {
		return nil, theme.Default, fmt.Errorf("read config: %w", err)
	}

	err = cl.Validate()
	if err != nil {
		return nil, cl.GetTheme(), fmt.Errorf("validate config %s: %w", path, err)
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, cl.GetTheme(), fmt.Errorf("load config %s: %w", path, err)
	}

	slog.Debug("loaded config", slog.String("path", path))

	return cfg, cl.GetTheme(), nil
}

// LoadProject finds and loads the project configuration for dir, searching
// dir and its parents. It returns nil and an empty path if there is none.
func LoadProject(dir string, opts ...LoaderOpt) (*projectconfigs.ProjectConfig, string, error) {
	path, err := projectconfigs.Find(dir)
	if err != nil {
		return nil, "", err //nolint:wrapcheck // Already wrapped.
	}

	if path == "" {
		return nil, "", nil
	}

	pcl, err := NewLoaderFromFile(path, projectconfigs.New, projectconfigs.DefaultValidator, opts...)
	if err != nil {
		return nil, path, fmt.Errorf("read project config: %w", err)
	}

	err = pcl.Validate()
	if err != nil {
		return nil, path, fmt.Errorf("validate project config %s: %w", path, err)
	}

	pc, err := pcl.Load()
	if err != nil {
		return nil, path, fmt.Errorf("load project config %s: %w", path, err)
	}

	slog.Debug("loaded project config", slog.String("path", path), slog.Int("rules", len(pc.Rules)))

	return pc, path, nil
}
