package expr

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),
		ext.Sets(),

		// `includes` macro and function for checking list membership.
		// Example: tags.includes("go").
		// Example: tags.includes("go", "typescript").
		cel.Macros(
			cel.ReceiverVarArgMacro("includes", includesVarArgMacro),
		),
		cel.Function("@includes",
			cel.Overload("@includes_list_string", []*cel.Type{cel.ListType(cel.StringType), cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(list, value ref.Val) ref.Val {
					l, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("includes: invalid list")
					}

					return l.Contains(value)
				}),
			),
			cel.Overload("@includes_list_list", []*cel.Type{
				cel.ListType(cel.StringType), cel.ListType(cel.StringType),
			}, cel.BoolType,
				cel.BinaryBinding(func(list, values ref.Val) ref.Val {
					l, ok := list.(traits.Lister)
					if !ok {
						return types.NewErr("includes: invalid list")
					}

					vs, ok := values.(traits.Lister)
					if !ok {
						return types.NewErr("includes: invalid values")
					}

					it := vs.Iterator()
					for it.HasNext() == types.True {
						if l.Contains(it.Next()) == types.True {
							return types.True
						}
					}

					return types.False
				}),
			),
		),

		// `semverAtLeast` compares two semantic versions.
		// Example: semverAtLeast(version, "2.0.0").
		cel.Function("semverAtLeast",
			cel.Overload("semver_at_least", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(version, minimum ref.Val) ref.Val {
					v, err := parseVersion(version)
					if err != nil {
						return types.NewErr("semverAtLeast: %v", err)
					}

					m, err := parseVersion(minimum)
					if err != nil {
						return types.NewErr("semverAtLeast: %v", err)
					}

					return types.Bool(!v.LessThan(m))
				}),
			),
		),

		// `semverSatisfies` checks a version against a constraint.
		// Example: semverSatisfies(version, "^1.2").
		cel.Function("semverSatisfies",
			cel.Overload("semver_satisfies", []*cel.Type{cel.StringType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(version, constraint ref.Val) ref.Val {
					v, err := parseVersion(version)
					if err != nil {
						return types.NewErr("semverSatisfies: %v", err)
					}

					s, ok := constraint.Value().(string)
					if !ok {
						return types.NewErr("semverSatisfies: invalid constraint value")
					}

					c, err := semver.NewConstraint(s)
					if err != nil {
						return types.NewErr("semverSatisfies: %v", err)
					}

					return types.Bool(c.Check(v))
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

var errInvalidString = errors.New("invalid string value")

func parseVersion(val ref.Val) (*semver.Version, error) {
	s, ok := val.Value().(string)
	if !ok {
		return nil, errInvalidString
	}

	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", s, err)
	}

	return v, nil
}

//nolint:ireturn // Following CEL's function signature.
func includesVarArgMacro(meh cel.MacroExprFactory, target ast.Expr, args []ast.Expr) (ast.Expr, *cel.Error) {
	switch len(args) {
	case 0:
		return nil, meh.NewError(target.ID(), "includes() requires at least one argument")
	case 1:
		return meh.NewCall("@includes", target, args[0]), nil
	default:
		return meh.NewCall("@includes", target, meh.NewList(args...)), nil
	}
}
