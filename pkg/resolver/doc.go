// Package resolver computes the final set of rules to generate from a user
// selection.
//
// A [Resolver] is built once from an immutable snapshot of rule relationships
// (see [Record]) and answers four questions about a selection:
//
//   - Which rules are pulled in transitively through `requires`
//     ([Resolver.Expand]).
//   - Which selected rules declare a conflict with each other
//     ([Resolver.DetectConflicts]).
//   - Which rules are made redundant by another selected rule through
//     `supersedes` ([Resolver.ReduceSuperseded]).
//   - What the final, deduplicated selection is, along with any warnings
//     ([Resolver.Resolve]).
//
// None of these operations return errors. Unknown rules, missing
// dependencies, conflicts and supersession are all reported as data on the
// result, and callers decide how to act on them. A [Resolver] holds no mutable
// state, so it is safe to share between goroutines.
package resolver
