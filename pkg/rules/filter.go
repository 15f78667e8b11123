package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rerades/ai-rules-cli/pkg/expr"
)

var filterEnv = sync.OnceValues(func() (*expr.Environment, error) {
	return expr.NewEnvironment(
		cel.Variable("id", cel.StringType),
		cel.Variable("version", cel.StringType),
		cel.Variable("title", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("priority", cel.IntType),
		cel.Variable("alwaysApply", cel.BoolType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("globs", cel.ListType(cel.StringType)),
		cel.Variable("requires", cel.ListType(cel.StringType)),
		cel.Variable("conflicts", cel.ListType(cel.StringType)),
		cel.Variable("supersedes", cel.ListType(cel.StringType)),
	)
})

// Filter matches rules against a CEL expression, for example:
//
//	category == "typescript" && priority >= 60
//	tags.includes("testing") || semverAtLeast(version, "2.0.0")
type Filter struct {
	program    cel.Program
	expression string
}

// NewFilter compiles expression into a [Filter]. The expression must
// evaluate to a boolean.
func NewFilter(expression string) (*Filter, error) {
	env, err := filterEnv()
	if err != nil {
		return nil, err
	}

	prg, err := env.CompileBool(expression)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", expression, err)
	}

	return &Filter{program: prg, expression: expression}, nil
}

// Match reports whether r matches the filter.
func (f *Filter) Match(r *Rule) (bool, error) {
	out, _, err := f.program.Eval(activation(r))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q for %s: %w", f.expression, r.ID, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate filter %q for %s: %w", f.expression, r.ID, expr.ErrNotBool)
	}

	return b, nil
}

// Apply returns the rules matching the filter, keeping their order.
func (f *Filter) Apply(rules []*Rule) ([]*Rule, error) {
	var out []*Rule
	for _, r := range rules {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}

	return out, nil
}

func (f *Filter) String() string {
	return f.expression
}

func activation(r *Rule) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"version":     r.Version,
		"title":       r.Title,
		"description": r.Description,
		"category":    r.Category,
		"priority":    r.GetPriority(),
		"alwaysApply": r.AlwaysApply,
		"tags":        orEmpty(r.Tags),
		"globs":       orEmpty(r.Globs),
		"requires":    orEmpty(r.Requires),
		"conflicts":   orEmpty(r.Conflicts),
		"supersedes":  orEmpty(r.Supersedes),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
