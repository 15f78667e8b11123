package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerades/ai-rules-cli/internal/cli"
	"github.com/rerades/ai-rules-cli/pkg/resolver"
)

const (
	foundationRule = `---
id: foundation.base
version: 1.0.0
title: Foundation
description: Shared conventions.
category: foundation
alwaysApply: true
---
Be consistent.
`
	strictRule = `---
id: typescript.strict
version: 1.0.0
title: Strict TypeScript
description: Enable every strict check.
category: typescript
requires: [foundation.base]
conflicts: [typescript.loose]
globs: ["**/*.ts"]
---
Use strict mode.
`
	looseRule = `---
id: typescript.loose
version: 1.0.0
title: Loose TypeScript
description: Allow implicit any.
category: typescript
---
Anything goes.
`
)

// rulesDir writes the given rule documents, keyed by file name.
func rulesDir(t *testing.T, docs map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, doc := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o600))
	}

	return dir
}

func defaultRules(t *testing.T) string {
	t.Helper()

	return rulesDir(t, map[string]string{
		"foundation.md": foundationRule,
		"strict.md":     strictRule,
		"loose.md":      looseRule,
	})
}

// run executes the root command in isolation from the user's config and the
// builtin rules.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--no-builtin",
		"--rules-dir", dir,
		"--log-level", "error",
	}, args...))

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestList(t *testing.T) {
	t.Parallel()

	dir := defaultRules(t)

	tcs := map[string]struct {
		args     []string
		contains []string
		excludes []string
	}{
		"all rules": {
			contains: []string{"Foundation", "Typescript", "foundation.base", "typescript.strict", "typescript.loose"},
		},
		"by category": {
			args:     []string{"--category", "typescript"},
			contains: []string{"typescript.strict", "typescript.loose"},
			excludes: []string{"foundation.base"},
		},
		"by filter": {
			args:     []string{"--filter", "alwaysApply"},
			contains: []string{"foundation.base"},
			excludes: []string{"typescript.strict"},
		},
		"no match": {
			args:     []string{"--category", "python"},
			contains: []string{"No rules found."},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, dir, append([]string{"list"}, tc.args...)...)
			require.NoError(t, err)

			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tc.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestList_InvalidFilter(t *testing.T) {
	t.Parallel()

	_, err := run(t, defaultRules(t), "list", "--filter", "priority >")
	require.ErrorContains(t, err, "parse filter")
}

func TestSearch(t *testing.T) {
	t.Parallel()

	out, err := run(t, defaultRules(t), "search", "strict")
	require.NoError(t, err)
	assert.Contains(t, out, "typescript.strict")
	assert.NotContains(t, out, "foundation.base")
}

func TestShow(t *testing.T) {
	t.Parallel()

	dir := defaultRules(t)

	out, err := run(t, dir, "show", "typescript.strict")
	require.NoError(t, err)
	assert.Contains(t, out, "id: typescript.strict")
	assert.Contains(t, out, "Use strict mode.")

	_, err = run(t, dir, "show", "missing.rule")
	require.ErrorContains(t, err, `rule "missing.rule" not found`)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := defaultRules(t)

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, dir, "check", "typescript.strict", "typescript.loose")
		require.NoError(t, err)
		assert.Contains(t, out, "Rule 'typescript.strict' conflicts with rule 'typescript.loose'")
		assert.Contains(t, out, "added foundation.base")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, dir, "check", "-o", "json", "typescript.strict", "unknown.rule")
		require.NoError(t, err)

		var res resolver.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, []string{"typescript.strict", "foundation.base"}, res.IDs())
		assert.Equal(t, []string{"Missing rules: unknown.rule"}, res.Warnings)
		assert.Empty(t, res.Conflicts)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		out, err := run(t, dir, "check", "-o", "yaml", "typescript.loose")
		require.NoError(t, err)
		assert.Contains(t, out, "ruleId: typescript.loose")
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, dir, "check", "-o", "xml", "typescript.loose")
		require.ErrorContains(t, err, "invalid argument")
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	dir := defaultRules(t)

	t.Run("writes files", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()

		stdout, err := run(t, dir, "generate", "--out", out, "typescript.strict")
		require.NoError(t, err)
		assert.Contains(t, stdout, "2 written")

		b, err := os.ReadFile(filepath.Join(out, "typescript.strict.mdc"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "Use strict mode.")
		assert.FileExists(t, filepath.Join(out, "foundation.base.mdc"))
	})

	t.Run("dry run", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()

		_, err := run(t, dir, "generate", "--dry-run", "--out", out, "typescript.loose")
		require.NoError(t, err)
		assert.NoFileExists(t, filepath.Join(out, "typescript.loose.mdc"))
	})

	t.Run("conflicts abort", func(t *testing.T) {
		t.Parallel()

		out := t.TempDir()

		_, err := run(t, dir, "generate", "--out", out, "typescript.strict", "typescript.loose")
		require.ErrorIs(t, err, cli.ErrConflicts)

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

//nolint:paralleltest // Changes the working directory.
func TestGenerate_ProjectConfig(t *testing.T) {
	dir := defaultRules(t)
	wd := t.TempDir()
	t.Chdir(wd)

	_, err := run(t, dir, "generate")
	require.ErrorIs(t, err, cli.ErrNoSelection)

	project := `apiVersion: ai-rules.rerades.dev/v1beta1
kind: ProjectConfig
output:
  dir: generated
  extension: .md
rules:
  - typescript.loose
`
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".ai-rules.yaml"), []byte(project), 0o600))

	_, err = run(t, dir, "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(wd, "generated", "typescript.loose.md"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := defaultRules(t)

	tcs := map[string]struct {
		docs     map[string]string
		contains []string
		wantErr  bool
	}{
		"valid": {
			docs:     map[string]string{"loose.md": looseRule},
			contains: []string{"1 rules valid"},
		},
		"references resolved against catalog": {
			docs: map[string]string{"extra.md": `---
id: typescript.extra
version: 0.1.0
title: Extra
description: Needs the base.
category: typescript
requires: [foundation.base]
---
`},
			contains: []string{"1 rules valid"},
		},
		"dangling reference": {
			docs: map[string]string{"extra.md": `---
id: typescript.extra
version: 0.1.0
title: Extra
description: Needs something missing.
category: typescript
supersedes: [typescript.gone]
---
`},
			contains: []string{"dangling typescript.extra supersedes typescript.gone"},
			wantErr:  true,
		},
		"invalid version": {
			docs: map[string]string{"bad.md": `---
id: typescript.bad
version: one
title: Bad
description: Bad version.
category: typescript
---
`},
			contains: []string{"invalid", "bad.md"},
			wantErr:  true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, base, "validate", rulesDir(t, tc.docs))
			if tc.wantErr {
				require.ErrorIs(t, err, cli.ErrInvalidRules)
			} else {
				require.NoError(t, err)
			}

			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestValidate_File(t *testing.T) {
	t.Parallel()

	dir := rulesDir(t, map[string]string{"broken.md": "no frontmatter here\n"})

	out, err := run(t, defaultRules(t), "validate", filepath.Join(dir, "broken.md"))
	require.ErrorIs(t, err, cli.ErrInvalidRules)
	assert.Contains(t, out, "file:"+filepath.Join(dir, "broken.md"))

	_, err = run(t, dir, "validate", filepath.Join(dir, "missing.md"))
	require.Error(t, err)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	args := func(extra ...string) []string {
		return append([]string{"--config", path, "config"}, extra...)
	}

	out, err := run(t, t.TempDir(), args("--path")...)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, err = run(t, t.TempDir(), args("--force")...)
	require.ErrorContains(t, err, "--force requires --write")

	_, err = run(t, t.TempDir(), args("--write")...)
	require.NoError(t, err)
	assert.FileExists(t, path)

	out, err = run(t, t.TempDir(), args()...)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: Configuration")
	assert.Contains(t, out, "extension: .mdc")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, t.TempDir(), "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "goVersion")
}
