package rules

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/rerades/ai-rules-cli/pkg/resolver"
)

// Problem describes a rule document that could not be loaded.
type Problem struct {
	Err    error
	Source string
	Path   string
}

func (p Problem) Error() string {
	return p.Err.Error()
}

func (p Problem) Unwrap() error {
	return p.Err
}

// Catalog is an immutable snapshot of loaded rules.
type Catalog struct {
	rules    map[string]*Rule
	resolver func() *resolver.Resolver
	ids      []string
	problems []Problem
}

// NewCatalog creates a [Catalog] from rules. When multiple rules share an
// ID, the one with the higher version wins; for equal versions, the later
// one wins.
func NewCatalog(rules ...*Rule) *Catalog {
	c := &Catalog{
		rules: make(map[string]*Rule, len(rules)),
	}

	for _, r := range rules {
		c.add(r)
	}

	c.seal()

	return c
}

func (c *Catalog) add(r *Rule) {
	existing, ok := c.rules[r.ID]
	if ok && r.SemVer() != nil && existing.SemVer() != nil && r.SemVer().LessThan(existing.SemVer()) {
		slog.Debug("ignoring older duplicate rule",
			slog.String("id", r.ID),
			slog.String("version", r.Version),
			slog.String("kept", existing.Version),
			slog.String("source", r.Origin),
		)

		return
	}

	if ok {
		slog.Debug("overriding duplicate rule",
			slog.String("id", r.ID),
			slog.String("version", r.Version),
			slog.String("replaced", existing.Version),
			slog.String("source", r.Origin),
		)
	}

	c.rules[r.ID] = r
}

func (c *Catalog) seal() {
	c.ids = make([]string, 0, len(c.rules))
	for id := range c.rules {
		c.ids = append(c.ids, id)
	}

	slices.Sort(c.ids)

	c.resolver = sync.OnceValue(func() *resolver.Resolver {
		return resolver.New(c.Records())
	})
}

// Len returns the number of rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Get returns the rule with the given ID.
func (c *Catalog) Get(id string) (*Rule, bool) {
	r, ok := c.rules[id]

	return r, ok
}

// IDs returns all rule IDs in lexical order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

// Rules returns all rules, ordered by category, then by descending
// priority, then by ID.
func (c *Catalog) Rules() []*Rule {
	out := make([]*Rule, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.rules[id])
	}

	SortRules(out)

	return out
}

// Categories returns the distinct categories in lexical order.
func (c *Catalog) Categories() []string {
	var cats []string
	for _, r := range c.rules {
		if !slices.Contains(cats, r.Category) {
			cats = append(cats, r.Category)
		}
	}

	slices.Sort(cats)

	return cats
}

// ByCategory returns the rules of a category, ordered like [Catalog.Rules].
func (c *Catalog) ByCategory(category string) []*Rule {
	var out []*Rule
	for _, id := range c.ids {
		if r := c.rules[id]; r.Category == category {
			out = append(out, r)
		}
	}

	SortRules(out)

	return out
}

// Records returns the [resolver.Record] of every rule, ordered by ID.
func (c *Catalog) Records() []resolver.Record {
	out := make([]resolver.Record, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.rules[id].Record())
	}

	return out
}

// Resolver returns a [resolver.Resolver] for the catalog. It is created
// once and shared by all callers.
func (c *Catalog) Resolver() *resolver.Resolver {
	return c.resolver()
}

// Problems returns the documents that could not be loaded.
func (c *Catalog) Problems() []Problem {
	return slices.Clone(c.problems)
}

// Search returns the rules fuzzy-matching query against their ID, title and
// tags, best matches first. An empty query returns [Catalog.Rules].
func (c *Catalog) Search(query string) []*Rule {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Rules()
	}

	matches := fuzzy.FindFrom(query, searchIndex{c})

	out := make([]*Rule, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.rules[c.ids[m.Index]])
	}

	return out
}

type searchIndex struct {
	c *Catalog
}

func (s searchIndex) Len() int {
	return len(s.c.ids)
}

func (s searchIndex) String(i int) string {
	r := s.c.rules[s.c.ids[i]]

	return strings.Join(append([]string{r.ID, r.Title}, r.Tags...), " ")
}

// SortRules sorts rules by category, then by descending priority, then by ID.
func SortRules(rules []*Rule) {
	slices.SortStableFunc(rules, func(a, b *Rule) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(b.GetPriority(), a.GetPriority()),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
