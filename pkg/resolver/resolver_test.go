package resolver_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rerades/ai-rules-cli/pkg/resolver"
)

func scenarioCatalog() []resolver.Record {
	return []resolver.Record{
		{ID: "foundation.test"},
		{ID: "typescript.conventions", Requires: []string{"foundation.test"}},
		{ID: "conflicting.rule", Conflicts: []string{"foundation.test"}},
	}
}

func TestResolver_Expand(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		records   []resolver.Record
		available []string
		selected  []string
		want      []resolver.DependencyInfo
	}{
		"no requirements produce no entries": {
			records:  []resolver.Record{{ID: "a.one"}, {ID: "b.two"}},
			selected: []string{"a.one", "b.two"},
			want:     []resolver.DependencyInfo{},
		},
		"missing dependency": {
			records:   []resolver.Record{{ID: "t.rule", Requires: []string{"x.rule"}}},
			available: []string{"t.rule"},
			selected:  []string{"t.rule"},
			want: []resolver.DependencyInfo{
				{RuleID: "t.rule", MissingDependencies: []string{"x.rule"}, AddedDependencies: []string{}},
			},
		},
		"circular requirements terminate": {
			records: []resolver.Record{
				{ID: "a.rule", Requires: []string{"b.rule"}},
				{ID: "b.rule", Requires: []string{"a.rule"}},
			},
			selected: []string{"a.rule"},
			want: []resolver.DependencyInfo{
				{RuleID: "a.rule", MissingDependencies: []string{}, AddedDependencies: []string{"b.rule"}},
			},
		},
		"self requirement is silent": {
			records:  []resolver.Record{{ID: "a.rule", Requires: []string{"a.rule"}}},
			selected: []string{"a.rule"},
			want:     []resolver.DependencyInfo{},
		},
		"transitive dependencies follow bfs order": {
			records: []resolver.Record{
				{ID: "top.rule", Requires: []string{"mid.one", "mid.two"}},
				{ID: "mid.one", Requires: []string{"leaf.rule"}},
				{ID: "mid.two", Requires: []string{"gone.rule"}},
				{ID: "leaf.rule"},
			},
			selected: []string{"top.rule"},
			want: []resolver.DependencyInfo{
				{RuleID: "top.rule", MissingDependencies: []string{}, AddedDependencies: []string{"mid.one", "mid.two"}},
				{RuleID: "mid.one", MissingDependencies: []string{}, AddedDependencies: []string{"leaf.rule"}},
				{RuleID: "mid.two", MissingDependencies: []string{"gone.rule"}, AddedDependencies: []string{}},
			},
		},
		"already selected dependencies are not added": {
			records: []resolver.Record{
				{ID: "a.rule", Requires: []string{"b.rule"}},
				{ID: "b.rule"},
			},
			selected: []string{"a.rule", "b.rule"},
			want:     []resolver.DependencyInfo{},
		},
		"unknown selection is skipped": {
			records:  []resolver.Record{{ID: "a.rule"}},
			selected: []string{"nope.rule"},
			want:     []resolver.DependencyInfo{},
		},
		"duplicate selection is processed once": {
			records: []resolver.Record{
				{ID: "a.rule", Requires: []string{"b.rule"}},
				{ID: "b.rule"},
			},
			selected: []string{"a.rule", "a.rule"},
			want: []resolver.DependencyInfo{
				{RuleID: "a.rule", MissingDependencies: []string{}, AddedDependencies: []string{"b.rule"}},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var opts []resolver.Option
			if tc.available != nil {
				opts = append(opts, resolver.WithAvailableIDs(tc.available...))
			}

			r := resolver.New(tc.records, opts...)
			assert.Equal(t, tc.want, r.Expand(tc.selected))
		})
	}
}

func TestResolver_ExpandIdempotent(t *testing.T) {
	t.Parallel()

	records := []resolver.Record{
		{ID: "top.rule", Requires: []string{"mid.one", "mid.two"}},
		{ID: "mid.one", Requires: []string{"leaf.rule", "top.rule"}},
		{ID: "mid.two", Requires: []string{"leaf.rule"}},
		{ID: "leaf.rule"},
	}
	r := resolver.New(records)

	res := r.Resolve([]string{"top.rule"})
	require.Len(t, res.FinalSelections, 4)

	for _, info := range r.Expand(res.IDs()) {
		assert.Empty(t, info.AddedDependencies, info.RuleID)
	}
}

func TestResolver_DetectConflicts(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		records  []resolver.Record
		selected []string
		want     []resolver.ConflictInfo
	}{
		"mutual conflict yields two entries": {
			records: []resolver.Record{
				{ID: "a.rule", Conflicts: []string{"b.rule"}},
				{ID: "b.rule", Conflicts: []string{"a.rule"}},
			},
			selected: []string{"a.rule", "b.rule"},
			want: []resolver.ConflictInfo{
				{RuleID1: "a.rule", RuleID2: "b.rule", Reason: "Rule 'a.rule' conflicts with rule 'b.rule'"},
				{RuleID1: "a.rule", RuleID2: "b.rule", Reason: "Rule 'b.rule' conflicts with rule 'a.rule'"},
			},
		},
		"one directional conflict yields one entry": {
			records: []resolver.Record{
				{ID: "a.rule", Conflicts: []string{"b.rule"}},
				{ID: "b.rule"},
			},
			selected: []string{"a.rule", "b.rule"},
			want: []resolver.ConflictInfo{
				{RuleID1: "a.rule", RuleID2: "b.rule", Reason: "Rule 'a.rule' conflicts with rule 'b.rule'"},
			},
		},
		"reverse declaration keeps selection order": {
			records: []resolver.Record{
				{ID: "a.rule", Conflicts: []string{"b.rule"}},
				{ID: "b.rule"},
			},
			selected: []string{"b.rule", "a.rule"},
			want: []resolver.ConflictInfo{
				{RuleID1: "b.rule", RuleID2: "a.rule", Reason: "Rule 'a.rule' conflicts with rule 'b.rule'"},
			},
		},
		"unselected conflicts are ignored": {
			records: []resolver.Record{
				{ID: "a.rule", Conflicts: []string{"c.rule"}},
				{ID: "b.rule"},
			},
			selected: []string{"a.rule", "b.rule"},
			want:     []resolver.ConflictInfo{},
		},
		"unknown rules have no conflicts": {
			records:  []resolver.Record{{ID: "a.rule"}},
			selected: []string{"a.rule", "x.rule"},
			want:     []resolver.ConflictInfo{},
		},
		"self pairs are never compared": {
			records:  []resolver.Record{{ID: "a.rule", Conflicts: []string{"a.rule"}}},
			selected: []string{"a.rule", "a.rule"},
			want:     []resolver.ConflictInfo{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := resolver.New(tc.records)
			assert.Equal(t, tc.want, r.DetectConflicts(tc.selected))
		})
	}
}

func TestResolver_ReduceSuperseded(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		records   []resolver.Record
		ids       []string
		wantKept  []string
		wantInfos []resolver.SupersedingInfo
	}{
		"declared and present": {
			records: []resolver.Record{
				{ID: "a.rule", Supersedes: []string{"b.rule"}},
				{ID: "b.rule"},
			},
			ids:       []string{"a.rule", "b.rule"},
			wantKept:  []string{"a.rule"},
			wantInfos: []resolver.SupersedingInfo{{Superseded: "b.rule", Superseding: "a.rule"}},
		},
		"superseded rule not present": {
			records: []resolver.Record{
				{ID: "a.rule", Supersedes: []string{"b.rule"}},
			},
			ids:       []string{"a.rule"},
			wantKept:  []string{"a.rule"},
			wantInfos: []resolver.SupersedingInfo{},
		},
		"chain removes every superseded rule": {
			records: []resolver.Record{
				{ID: "a.rule", Supersedes: []string{"b.rule"}},
				{ID: "b.rule", Supersedes: []string{"c.rule"}},
				{ID: "c.rule"},
				{ID: "d.rule"},
			},
			ids:      []string{"c.rule", "d.rule", "b.rule", "a.rule"},
			wantKept: []string{"d.rule", "a.rule"},
			wantInfos: []resolver.SupersedingInfo{
				{Superseded: "c.rule", Superseding: "b.rule"},
				{Superseded: "b.rule", Superseding: "a.rule"},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := resolver.New(tc.records)
			kept, infos := r.ReduceSuperseded(tc.ids)
			assert.Equal(t, tc.wantKept, kept)
			assert.Equal(t, tc.wantInfos, infos)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("dependencies are added", func(t *testing.T) {
		t.Parallel()

		r := resolver.New(scenarioCatalog())
		res := r.Resolve([]string{"typescript.conventions"})

		assert.Equal(t, []resolver.DependencyInfo{{
			RuleID:              "typescript.conventions",
			MissingDependencies: []string{},
			AddedDependencies:   []string{"foundation.test"},
		}}, res.Dependencies)
		assert.Empty(t, res.Conflicts)
		assert.Empty(t, res.Warnings)
		assert.False(t, res.HasConflicts())
		assert.Equal(t, []resolver.RuleSelection{
			{RuleID: "typescript.conventions", Selected: true, Reason: resolver.ReasonManual},
			{RuleID: "foundation.test", Selected: true, Reason: resolver.ReasonManual},
		}, res.FinalSelections)
	})

	// Only conflicting.rule declares the conflict, so a single entry is
	// reported rather than one per pair member.
	t.Run("one-sided conflict is reported once, not twice", func(t *testing.T) {
		t.Parallel()

		r := resolver.New(scenarioCatalog())
		res := r.Resolve([]string{"foundation.test", "conflicting.rule"})

		assert.Equal(t, []resolver.ConflictInfo{{
			RuleID1: "foundation.test",
			RuleID2: "conflicting.rule",
			Reason:  "Rule 'conflicting.rule' conflicts with rule 'foundation.test'",
		}}, res.Conflicts)
		assert.True(t, res.HasConflicts())
		for _, w := range res.Warnings {
			assert.NotContains(t, w, "Missing rules")
		}
	})

	t.Run("mutual conflicts are reported twice", func(t *testing.T) {
		t.Parallel()

		records := scenarioCatalog()
		records[0].Conflicts = []string{"conflicting.rule"}

		r := resolver.New(records)
		res := r.Resolve([]string{"foundation.test", "conflicting.rule"})

		assert.Len(t, res.Conflicts, 2)
		assert.Empty(t, res.Warnings)
	})

	t.Run("conflicts of dependencies are not checked", func(t *testing.T) {
		t.Parallel()

		r := resolver.New(scenarioCatalog())
		res := r.Resolve([]string{"typescript.conventions", "conflicting.rule"})

		assert.Empty(t, res.Conflicts)
		assert.ElementsMatch(t,
			[]string{"typescript.conventions", "conflicting.rule", "foundation.test"},
			res.IDs(),
		)
	})

	t.Run("unknown selections are warned about", func(t *testing.T) {
		t.Parallel()

		r := resolver.New(scenarioCatalog())
		res := r.Resolve([]string{"nope.one", "foundation.test", "nope.two"})

		assert.Equal(t, []string{"Missing rules: nope.one, nope.two"}, res.Warnings)
		assert.Equal(t, []string{"foundation.test"}, res.IDs())
	})

	t.Run("missing dependencies are warned about", func(t *testing.T) {
		t.Parallel()

		r := resolver.New([]resolver.Record{
			{ID: "a.rule", Requires: []string{"x.rule", "y.rule"}},
		})
		res := r.Resolve([]string{"zzz.rule", "a.rule"})

		assert.Equal(t, []string{
			"Missing rules: zzz.rule",
			"Rule 'a.rule' has missing dependencies: x.rule, y.rule",
		}, res.Warnings)
		assert.Equal(t, []string{"a.rule"}, res.IDs())
	})

	t.Run("superseded rules are removed", func(t *testing.T) {
		t.Parallel()

		r := resolver.New([]resolver.Record{
			{ID: "style.v2", Supersedes: []string{"style.v1"}, Requires: []string{"base.rule"}},
			{ID: "style.v1"},
			{ID: "base.rule"},
		})
		res := r.Resolve([]string{"style.v1", "style.v2"})

		assert.Equal(t, []string{"style.v2", "base.rule"}, res.IDs())
		assert.Equal(t, []resolver.SupersedingInfo{
			{Superseded: "style.v1", Superseding: "style.v2"},
		}, res.Superseding)
	})

	t.Run("available ids without a record are labeled as dependencies", func(t *testing.T) {
		t.Parallel()

		r := resolver.New(
			[]resolver.Record{{ID: "a.rule", Requires: []string{"ghost.rule"}}},
			resolver.WithAvailableIDs("a.rule", "ghost.rule"),
		)
		res := r.Resolve([]string{"a.rule"})

		assert.Equal(t, []resolver.RuleSelection{
			{RuleID: "a.rule", Selected: true, Reason: resolver.ReasonManual},
			{RuleID: "ghost.rule", Selected: true, Reason: resolver.ReasonDependency},
		}, res.FinalSelections)
	})

	t.Run("final selections have no duplicates", func(t *testing.T) {
		t.Parallel()

		r := resolver.New([]resolver.Record{
			{ID: "a.rule", Requires: []string{"c.rule"}},
			{ID: "b.rule", Requires: []string{"c.rule"}},
			{ID: "c.rule"},
		})
		res := r.Resolve([]string{"a.rule", "b.rule", "a.rule"})

		seen := map[string]bool{}
		for _, s := range res.FinalSelections {
			assert.False(t, seen[s.RuleID], "duplicate %s", s.RuleID)
			seen[s.RuleID] = true
		}
		assert.Len(t, seen, 3)
	})
}

func TestResolver_ConcurrentResolve(t *testing.T) {
	t.Parallel()

	r := resolver.New(scenarioCatalog())
	want := r.Resolve([]string{"typescript.conventions", "conflicting.rule"})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			got := r.Resolve([]string{"typescript.conventions", "conflicting.rule"})
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestResolver_Dependents(t *testing.T) {
	t.Parallel()

	r := resolver.New([]resolver.Record{
		{ID: "b.rule", Requires: []string{"base.rule"}},
		{ID: "a.rule", Requires: []string{"base.rule"}},
		{ID: "base.rule"},
	})

	assert.Equal(t, []string{"a.rule", "b.rule"}, r.Dependents("base.rule"))
	assert.Empty(t, r.Dependents("a.rule"))
}

func TestNew_CopiesRecords(t *testing.T) {
	t.Parallel()

	records := []resolver.Record{{ID: "a.rule", Requires: []string{"b.rule"}}, {ID: "b.rule"}}
	r := resolver.New(records)
	records[0].Requires[0] = "changed.rule"

	rec, ok := r.Record("a.rule")
	require.True(t, ok)
	assert.Equal(t, []string{"b.rule"}, rec.Requires)
}

func TestExclude(t *testing.T) {
	t.Parallel()

	in := []resolver.RuleSelection{
		{RuleID: "a.rule", Selected: true, Reason: resolver.ReasonManual},
		{RuleID: "b.rule", Selected: true, Reason: resolver.ReasonManual},
	}

	out := resolver.Exclude(in, "a.rule")
	assert.Equal(t, []resolver.RuleSelection{in[1]}, out)
	assert.Len(t, in, 2)
}
