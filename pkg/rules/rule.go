package rules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/rerades/ai-rules-cli/pkg/resolver"
	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

// DefaultPriority is used for rules that do not declare a priority.
const DefaultPriority = 50

var (
	ErrInvalidID      = errors.New("invalid rule id")
	ErrInvalidVersion = errors.New("invalid rule version")

	// IDPattern matches valid rule identifiers, e.g. "typescript.conventions".
	IDPattern = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9-]+)+$`)
)

// Metadata is the YAML frontmatter of a rule document.
type Metadata struct {
	// Priority orders rules within a category. Higher values come first.
	Priority *int `json:"priority,omitempty" jsonschema:"minimum=0,maximum=100,default=50"`
	// ID is the unique dotted rule identifier, e.g. typescript.conventions.
	ID string `json:"id" jsonschema:"title=ID,pattern=^[a-z0-9]+(\\.[a-z0-9-]+)+$"`
	// Version is the semantic version of the rule.
	Version     string   `json:"version" jsonschema:"title=Version,pattern=^[0-9]+\\.[0-9]+\\.[0-9]+([-+].*)?$"`
	Title       string   `json:"title" jsonschema:"minLength=1"`
	Description string   `json:"description" jsonschema:"minLength=1"`
	Category    string   `json:"category" jsonschema:"pattern=^[a-z0-9][a-z0-9-]*$"`
	Tags        []string `json:"tags,omitempty"`
	Globs       []string `json:"globs,omitempty"`
	Requires    []string `json:"requires,omitempty"`
	Conflicts   []string `json:"conflicts,omitempty"`
	Supersedes  []string `json:"supersedes,omitempty"`
	AlwaysApply bool     `json:"alwaysApply,omitempty"`
}

// GetPriority returns the declared priority, or [DefaultPriority].
func (m Metadata) GetPriority() int {
	if m.Priority == nil {
		return DefaultPriority
	}

	return *m.Priority
}

// Rule is a parsed rule document.
type Rule struct {
	semver *semver.Version

	// Source is the path the rule was read from, relative to its [Source].
	Source string
	// Origin is the name of the [Source] the rule was read from.
	Origin string
	Body   []byte
	Metadata
}

// Parse parses a rule document. The frontmatter is validated against the
// rule schema before it is decoded.
func Parse(path string, content []byte) (*Rule, error) {
	meta, body, err := SplitFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	err = RuleValidator.ValidateBytes(meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r := &Rule{
		Source: path,
		Body:   body,
	}

	err = yaml.Unmarshal(meta, &r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if !IDPattern.MatchString(r.ID) {
		return nil, fmt.Errorf("%s: %w: %q", path, ErrInvalidID, r.ID)
	}

	r.semver, err = semver.StrictNewVersion(r.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w %q: %w", path, ErrInvalidVersion, r.Version, err)
	}

	r.Requires = normalize(r.Requires)
	r.Conflicts = normalize(r.Conflicts)
	r.Supersedes = normalize(r.Supersedes)

	return r, nil
}

// SemVer returns the parsed version of the rule.
func (r *Rule) SemVer() *semver.Version {
	return r.semver
}

// Record returns the relationships of the rule for use with a
// [resolver.Resolver].
func (r *Rule) Record() resolver.Record {
	return resolver.Record{
		ID:         r.ID,
		Requires:   slices.Clone(r.Requires),
		Conflicts:  slices.Clone(r.Conflicts),
		Supersedes: slices.Clone(r.Supersedes),
	}
}

// Document renders the rule back into a Markdown document with frontmatter.
func (r *Rule) Document() ([]byte, error) {
	meta, err := yaml.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return JoinFrontMatter(meta, r.Body), nil
}

// normalize returns nil for empty lists, and removes duplicate entries.
func normalize(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	return out
}
