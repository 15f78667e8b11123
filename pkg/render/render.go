// Package render turns resolved rule selections into editor rule files.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/rerades/ai-rules-cli/api"
	"github.com/rerades/ai-rules-cli/pkg/log"
	"github.com/rerades/ai-rules-cli/pkg/resolver"
	"github.com/rerades/ai-rules-cli/pkg/rules"
	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

// Status describes what writing a [File] will do.
type Status string

const (
	StatusCreate    Status = "create"
	StatusUpdate    Status = "update"
	StatusUnchanged Status = "unchanged"
	StatusStale     Status = "stale"
)

// Lookup finds rules by ID.
type Lookup interface {
	Get(id string) (*rules.Rule, bool)
}

// File is a single planned output file.
type File struct {
	RuleID  string
	Path    string
	Status  Status
	Diff    string
	Content []byte
}

// Plan is the set of changes needed to bring the output directory in line
// with a selection.
type Plan struct {
	// Files holds one entry per selected rule, in selection order.
	Files []File
	// Stale holds previously generated files of rules that are not selected.
	Stale []File
	// Skipped holds selected IDs that have no rule in the catalog.
	Skipped []string
}

// Changed returns the files that will be created or updated.
func (p *Plan) Changed() []File {
	var out []File
	for _, f := range p.Files {
		if f.Status == StatusCreate || f.Status == StatusUpdate {
			out = append(out, f)
		}
	}

	return out
}

// Size returns the total size of all planned file contents, in bytes.
func (p *Plan) Size() uint64 {
	var n uint64
	for _, f := range p.Files {
		n += uint64(len(f.Content))
	}

	return n
}

// Diff returns the unified diffs of all changed and stale files.
func (p *Plan) Diff() string {
	var b strings.Builder
	for _, f := range slices.Concat(p.Changed(), p.Stale) {
		b.WriteString(f.Diff)
	}

	return b.String()
}

// Summary reports the outcome of [Renderer.Write].
type Summary struct {
	Dir       string
	Written   []string
	Unchanged []string
	Pruned    []string
	Stale     []string
	Bytes     uint64
}

// Renderer renders rules to files according to a [Config].
type Renderer struct {
	rules  Lookup
	config *Config
}

// New creates a new [Renderer].
func New(rules Lookup, config *Config) *Renderer {
	if config == nil {
		config = NewConfig()
	}

	return &Renderer{rules: rules, config: config}
}

// Config returns the configuration of the [Renderer].
func (r *Renderer) Config() *Config {
	return r.config
}

type minifiedFrontMatter struct {
	Description string `json:"description"`
	Globs       string `json:"globs"`
	AlwaysApply bool   `json:"alwaysApply"`
}

// Render returns the file content for a rule.
func (r *Renderer) Render(rule *rules.Rule) ([]byte, error) {
	var meta any = rule.Metadata
	if r.config.Minify == nil || *r.config.Minify {
		meta = minifiedFrontMatter{
			Description: rule.Description,
			Globs:       strings.Join(rule.Globs, ","),
			AlwaysApply: rule.AlwaysApply,
		}
	}

	b, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rule.ID, err)
	}

	body := bytes.TrimLeft(rule.Body, "\n")
	if len(body) > 0 {
		body = append([]byte("\n"), body...)
	}

	return rules.JoinFrontMatter(b, body), nil
}

// Plan computes the output files for selections without writing anything.
func (r *Renderer) Plan(ctx context.Context, selections []resolver.RuleSelection) (*Plan, error) {
	logger := log.WithContext(ctx)
	plan := &Plan{}
	selected := make(map[string]struct{}, len(selections))

	for _, sel := range selections {
		selected[sel.RuleID] = struct{}{}

		rule, ok := r.rules.Get(sel.RuleID)
		if !ok {
			logger.WarnContext(ctx, "skipping rule without document", slog.String("id", sel.RuleID))
			plan.Skipped = append(plan.Skipped, sel.RuleID)

			continue
		}

		content, err := r.Render(rule)
		if err != nil {
			return nil, err
		}

		f, err := r.planFile(sel.RuleID, content)
		if err != nil {
			return nil, err
		}

		plan.Files = append(plan.Files, f)
	}

	stale, err := r.findStale(selected)
	if err != nil {
		return nil, err
	}

	plan.Stale = stale

	return plan, nil
}

func (r *Renderer) planFile(id string, content []byte) (File, error) {
	path := r.config.Path(id)
	f := File{
		RuleID:  id,
		Path:    path,
		Content: content,
	}

	existing, err := os.ReadFile(path) //nolint:gosec // G304: Path is derived from config.
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f.Status = StatusCreate
	case err != nil:
		return File{}, fmt.Errorf("read %s: %w", path, err)
	case bytes.Equal(existing, content):
		f.Status = StatusUnchanged
	default:
		f.Status = StatusUpdate
	}

	if f.Status != StatusUnchanged {
		f.Diff = udiff.Unified("a/"+filepath.ToSlash(path), "b/"+filepath.ToSlash(path),
			string(existing), string(content))
	}

	return f, nil
}

// findStale returns files in the output directory that are named after a
// known rule, but are not part of selected.
func (r *Renderer) findStale(selected map[string]struct{}) ([]File, error) {
	entries, err := os.ReadDir(r.config.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	var stale []File

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		id, ok := strings.CutSuffix(e.Name(), r.config.Extension)
		if !ok {
			continue
		}

		if _, ok := selected[id]; ok {
			continue
		}

		if _, ok := r.rules.Get(id); !ok {
			continue
		}

		path := filepath.Join(r.config.Dir, e.Name())

		existing, err := os.ReadFile(path) //nolint:gosec // G304: Path is derived from config.
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		stale = append(stale, File{
			RuleID: id,
			Path:   path,
			Status: StatusStale,
			Diff:   udiff.Unified("a/"+filepath.ToSlash(path), "b/"+filepath.ToSlash(path), string(existing), ""),
		})
	}

	return stale, nil
}

// Write applies a [Plan]. Stale files are removed only if prune is set.
func (r *Renderer) Write(ctx context.Context, plan *Plan, prune bool) (*Summary, error) {
	logger := log.WithContext(ctx)
	sum := &Summary{Dir: r.config.Dir}

	for _, f := range plan.Files {
		sum.Bytes += uint64(len(f.Content))

		if f.Status == StatusUnchanged {
			sum.Unchanged = append(sum.Unchanged, f.Path)

			continue
		}

		err := api.WriteFile(f.Path, f.Content)
		if err != nil {
			return sum, fmt.Errorf("write %s: %w", f.RuleID, err)
		}

		logger.DebugContext(ctx, "wrote rule file",
			slog.String("id", f.RuleID),
			slog.String("path", f.Path),
			slog.String("status", string(f.Status)),
		)
		sum.Written = append(sum.Written, f.Path)
	}

	for _, f := range plan.Stale {
		if !prune {
			sum.Stale = append(sum.Stale, f.Path)

			continue
		}

		err := os.Remove(f.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return sum, fmt.Errorf("prune %s: %w", f.Path, err)
		}

		logger.DebugContext(ctx, "pruned stale rule file", slog.String("path", f.Path))
		sum.Pruned = append(sum.Pruned, f.Path)
	}

	return sum, nil
}
