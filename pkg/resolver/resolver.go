package resolver

import (
	"fmt"
	"slices"
	"strings"
)

// Resolver resolves rule selections against a fixed set of [Record]s.
type Resolver struct {
	records   map[string]Record
	available map[string]struct{}
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithAvailableIDs sets the universe of identifiers that count as known when
// validating selections and dependencies. By default, the IDs of all records
// passed to [New] are available.
func WithAvailableIDs(ids ...string) Option {
	return func(r *Resolver) {
		r.available = toSet(ids)
	}
}

// New creates a new [Resolver] for the given records. When two records share
// an ID, the later one wins. The records are copied, so later changes to the
// input do not affect the [Resolver].
func New(records []Record, opts ...Option) *Resolver {
	r := &Resolver{
		records: make(map[string]Record, len(records)),
	}

	for _, rec := range records {
		r.records[rec.ID] = Record{
			ID:         rec.ID,
			Requires:   slices.Clone(rec.Requires),
			Conflicts:  slices.Clone(rec.Conflicts),
			Supersedes: slices.Clone(rec.Supersedes),
		}
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.available == nil {
		r.available = make(map[string]struct{}, len(r.records))
		for id := range r.records {
			r.available[id] = struct{}{}
		}
	}

	return r
}

// IsAvailable reports whether id is part of the known identifier universe.
func (r *Resolver) IsAvailable(id string) bool {
	_, ok := r.available[id]

	return ok
}

// Record returns the record for id, if the catalog has one.
func (r *Resolver) Record(id string) (Record, bool) {
	rec, ok := r.records[id]

	return rec, ok
}

// Dependents returns the sorted IDs of all rules that directly require id.
func (r *Resolver) Dependents(id string) []string {
	var out []string
	for _, rec := range r.records {
		if slices.Contains(rec.Requires, id) {
			out = append(out, rec.ID)
		}
	}

	slices.Sort(out)

	return out
}

// Expand walks the `requires` graph breadth-first, starting from selected.
//
// An entry is returned for every visited rule that has at least one missing
// or newly added dependency, in the order the rules were visited. A
// dependency is missing when it is not an available ID. It is added when it
// is available, was not part of selected, and was not visited yet.
//
// Cycles are not an error; every rule is visited at most once.
func (r *Resolver) Expand(selected []string) []DependencyInfo {
	var (
		selectedSet = toSet(selected)
		processed   = make(map[string]struct{}, len(selected))
		queue       = slices.Clone(selected)
		deps        = []DependencyInfo{}
	)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, done := processed[id]; done {
			continue
		}

		processed[id] = struct{}{}

		rec, ok := r.records[id]
		if !ok {
			// Unknown selections are reported by Resolve.
			continue
		}

		info := DependencyInfo{
			RuleID:              id,
			MissingDependencies: []string{},
			AddedDependencies:   []string{},
		}

		for _, dep := range rec.Requires {
			if !r.IsAvailable(dep) {
				info.MissingDependencies = append(info.MissingDependencies, dep)
				continue
			}

			_, done := processed[dep]
			_, isSelected := selectedSet[dep]
			if !done && !isSelected {
				info.AddedDependencies = append(info.AddedDependencies, dep)
				queue = append(queue, dep)
			}
		}

		if len(info.MissingDependencies) > 0 || len(info.AddedDependencies) > 0 {
			deps = append(deps, info)
		}
	}

	return deps
}

// DetectConflicts checks every pair of selected rules for declared conflicts.
//
// Each direction is checked separately: when both rules of a pair declare the
// conflict, two entries are returned. Rules without a record never conflict.
func (r *Resolver) DetectConflicts(selected []string) []ConflictInfo {
	conflicts := []ConflictInfo{}

	for i, a := range selected {
		recA, okA := r.records[a]

		for _, b := range selected[i+1:] {
			if a == b {
				continue
			}

			if okA && slices.Contains(recA.Conflicts, b) {
				conflicts = append(conflicts, ConflictInfo{
					RuleID1: a,
					RuleID2: b,
					Reason:  conflictReason(a, b),
				})
			}

			recB, okB := r.records[b]
			if okB && slices.Contains(recB.Conflicts, a) {
				conflicts = append(conflicts, ConflictInfo{
					RuleID1: a,
					RuleID2: b,
					Reason:  conflictReason(b, a),
				})
			}
		}
	}

	return conflicts
}

// ReduceSuperseded removes every rule that is superseded by another rule in
// ids. The relationships that caused a removal are returned alongside the
// kept IDs, which preserve the order of ids.
//
// All supersession relationships are discovered before anything is removed,
// so in a chain where A supersedes B and B supersedes C, both B and C are
// removed.
func (r *Resolver) ReduceSuperseded(ids []string) ([]string, []SupersedingInfo) {
	var (
		present    = toSet(ids)
		superseded = make(map[string]struct{})
		infos      = []SupersedingInfo{}
	)

	for _, id := range ids {
		rec, ok := r.records[id]
		if !ok {
			continue
		}

		for _, s := range rec.Supersedes {
			if _, ok := present[s]; !ok {
				continue
			}

			infos = append(infos, SupersedingInfo{
				Superseded:  s,
				Superseding: id,
			})
			superseded[s] = struct{}{}
		}
	}

	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := superseded[id]; !ok {
			kept = append(kept, id)
		}
	}

	return kept, infos
}

// Resolve runs the full resolution pipeline for a selection.
//
// Unknown selections are dropped with a warning. The remaining rules are
// expanded with their dependencies, checked for conflicts (only among the
// rules that were explicitly selected), and reduced by supersession.
func (r *Resolver) Resolve(selected []string) *Result {
	res := &Result{
		FinalSelections: []RuleSelection{},
		Warnings:        []string{},
	}

	available, missing := r.partition(selected)
	if len(missing) > 0 {
		res.Warnings = append(res.Warnings, "Missing rules: "+strings.Join(missing, ", "))
	}

	res.Dependencies = r.Expand(available)
	res.Conflicts = r.DetectConflicts(available)

	finalIDs, superseding := r.ReduceSuperseded(mergeIDs(available, res.Dependencies))
	res.Superseding = superseding

	for _, id := range finalIDs {
		reason := ReasonDependency
		if _, ok := r.records[id]; ok {
			reason = ReasonManual
		}

		res.FinalSelections = append(res.FinalSelections, RuleSelection{
			RuleID:   id,
			Selected: true,
			Reason:   reason,
		})
	}

	for _, dep := range res.Dependencies {
		if len(dep.MissingDependencies) > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Rule '%s' has missing dependencies: %s",
				dep.RuleID, strings.Join(dep.MissingDependencies, ", ")))
		}
	}

	return res
}

// partition splits selected into available and unknown IDs, keeping order.
func (r *Resolver) partition(selected []string) ([]string, []string) {
	var available, missing []string
	for _, id := range selected {
		if r.IsAvailable(id) {
			available = append(available, id)
		} else {
			missing = append(missing, id)
		}
	}

	return available, missing
}

// mergeIDs returns the union of ids and all added dependencies, without
// duplicates. IDs keep their first-seen order.
func mergeIDs(ids []string, deps []DependencyInfo) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, id := range ids {
		add(id)
	}

	for _, dep := range deps {
		for _, id := range dep.AddedDependencies {
			add(id)
		}
	}

	return out
}

func conflictReason(declaring, other string) string {
	return fmt.Sprintf("Rule '%s' conflicts with rule '%s'", declaring, other)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set
}
