package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerades/ai-rules-cli/api/v1beta1"
	"github.com/rerades/ai-rules-cli/api/v1beta1/configs"
	"github.com/rerades/ai-rules-cli/pkg/config"
	"github.com/rerades/ai-rules-cli/pkg/ui/theme"
)

const header = "apiVersion: ai-rules.rerades.dev/v1beta1\nkind: Configuration\n"

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, header)
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return "/non/existent/file.yaml"
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t), configs.New, configs.DefaultValidator)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		errMsg  string
		wantErr bool
	}{
		"valid config": {
			input: header + "rules:\n  builtin: false\n  paths: [./rules]\n",
		},
		"invalid yaml": {
			input:   header + "invalid: [unclosed\n",
			wantErr: true,
			errMsg:  "']' not found",
		},
		"missing required fields": {
			input:   "rules:\n  builtin: true\n",
			wantErr: true,
			errMsg:  "missing properties",
		},
		"wrong type": {
			input:   header + "rules:\n  builtin: yes please\n",
			wantErr: true,
			errMsg:  "error at $.rules.builtin",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator)

			err := cl.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		wantErr error
		errMsg  string
	}{
		"valid config": {
			input: header + "output:\n  dir: out\n",
		},
		"invalid yaml": {
			input:  header + "invalid: [unclosed\n",
			errMsg: "']' not found",
		},
		"wrong kind": {
			input:   "apiVersion: ai-rules.rerades.dev/v1beta1\nkind: ProjectConfig\n",
			wantErr: v1beta1.ErrUnsupportedKind,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator)

			cfg, err := cl.Load()

			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, cfg)
			case tc.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				assert.Nil(t, cfg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "out", cfg.Output.Dir)
				// Defaults fill in the remaining fields.
				assert.Equal(t, ".mdc", cfg.Output.Extension)
				assert.NotNil(t, cfg.Rules)
				assert.NotNil(t, cfg.UI)
			}
		})
	}
}

func TestLoader_GetTheme(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte(header+"ui:\n  theme: dracula\n"), configs.New, configs.DefaultValidator)

	// The theme is only read from data when asked to.
	assert.Equal(t, theme.Default.ChromaStyle.Name, cl.GetTheme().ChromaStyle.Name)
}

func TestLoader_WithThemeFromData(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want  *theme.Theme
		input string
	}{
		"quoted theme": {
			input: header + "ui:\n  theme: \"github\"",
			want:  theme.New("github"),
		},
		"single quoted theme": {
			input: header + "ui:\n  theme: 'monokai'",
			want:  theme.New("monokai"),
		},
		"unquoted theme": {
			input: header + "ui:\n  theme: dracula",
			want:  theme.New("dracula"),
		},
		"ui section without theme": {
			input: header + "ui:\n  other: value",
			want:  theme.Default,
		},
		"no ui section": {
			input: header + "output:\n  dir: out",
			want:  theme.Default,
		},
		"malformed yaml falls back to text match": {
			input: header + "ui:\n  theme: \"onedark\"\n  invalid: [unclosed\n",
			want:  theme.New("onedark"),
		},
		"text match skips comments and other fields": {
			input: header + "ui:\n  # Some comment\n  other: value\n  theme: solarized-dark # inline\nbroken: [\n",
			want:  theme.New("solarized-dark"),
		},
		"theme in wrong section": {
			input: header + "output:\n  theme: \"shouldnotbefound\"",
			want:  theme.Default,
		},
		"empty config": {
			input: "",
			want:  theme.Default,
		},
		"not yaml at all": {
			input: "this is not yaml at all!",
			want:  theme.Default,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes(
				[]byte(tc.input), configs.New, configs.DefaultValidator, config.WithThemeFromData(),
			)

			got := cl.GetTheme()
			require.NotNil(t, got.ChromaStyle)
			assert.Equal(t, tc.want.ChromaStyle.Name, got.ChromaStyle.Name)
		})
	}
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	// Without a validator, unknown fields pass.
	cl := config.NewLoaderFromBytes([]byte(header+"unknown: field\n"), configs.New, configs.DefaultValidator,
		config.WithValidator(nil))

	require.NoError(t, cl.Validate())
}

func TestLoader_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, configs.WriteDefault(path, false))

	cl, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator)
	require.NoError(t, err)

	cfg, err := cl.Load()
	require.NoError(t, err)

	data, err := cfg.MarshalYAML()
	require.NoError(t, err)

	cl2 := config.NewLoaderFromBytes(data, configs.New, configs.DefaultValidator)
	require.NoError(t, cl2.Validate())

	cfg2, err := cl2.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.TypeMeta, cfg2.TypeMeta)
	assert.Equal(t, cfg.Output, cfg2.Output)
	assert.Equal(t, cfg.UI, cfg2.UI)
	assert.Equal(t, *cfg.Rules.Builtin, *cfg2.Rules.Builtin)
}

//nolint:paralleltest // Uses the working directory of the test binary.
func TestLoadGlobal(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, th, err := config.LoadGlobal(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, configs.New(), cfg)
		assert.Equal(t, theme.Default, th)
	})

	t.Run("reads theme and values", func(t *testing.T) {
		path := createTempFile(t, header+"ui:\n  theme: monokai\nrules:\n  paths: [a]\n")

		cfg, th, err := config.LoadGlobal(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, cfg.Rules.Paths)
		assert.Equal(t, theme.New("monokai").ChromaStyle.Name, th.ChromaStyle.Name)
	})

	t.Run("invalid file keeps theme", func(t *testing.T) {
		path := createTempFile(t, header+"ui:\n  theme: monokai\nbogus: true\n")

		_, th, err := config.LoadGlobal(path)
		require.Error(t, err)
		assert.Equal(t, theme.New("monokai").ChromaStyle.Name, th.ChromaStyle.Name)
	})
}

func TestLoadProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	pc, path, err := config.LoadProject(dir)
	require.NoError(t, err)
	assert.Nil(t, pc)
	assert.Empty(t, path)

	content := "apiVersion: ai-rules.rerades.dev/v1beta1\nkind: ProjectConfig\nrules: [go.conventions]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ai-rules.yaml"), []byte(content), 0o600))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o700))

	pc, path, err = config.LoadProject(sub)
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, filepath.Join(dir, ".ai-rules.yaml"), path)
	assert.Equal(t, []string{"go.conventions"}, pc.Rules)
}

// createTempFile creates a temporary file with the given content.
func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
