package resolver

// Reason explains why a rule is part of the final selection.
type Reason string

const (
	// ReasonManual is used for rules that have a record in the catalog.
	//
	// Note that this includes rules that were added as dependencies, as long
	// as the catalog knows about them.
	ReasonManual Reason = "manually selected"
	// ReasonDependency is used for rules without a catalog record.
	ReasonDependency Reason = "dependency"
)

// Record holds the relationships a rule declares with other rules.
// Empty lists are equivalent to absent ones.
type Record struct {
	// ID is the unique rule identifier, e.g. "typescript.conventions".
	ID string
	// Requires lists rules that must be generated alongside this rule.
	Requires []string
	// Conflicts lists rules that must not be selected together with this rule.
	Conflicts []string
	// Supersedes lists rules that this rule replaces when both are selected.
	Supersedes []string
}

// DependencyInfo describes what expanding a single rule's requirements found.
type DependencyInfo struct {
	RuleID              string   `json:"ruleId"`
	MissingDependencies []string `json:"missingDependencies"`
	AddedDependencies   []string `json:"addedDependencies"`
}

// ConflictInfo describes one declared conflict between two selected rules.
// RuleID1 is always the rule that appeared first in the selection, while
// Reason names the rule that declared the conflict.
type ConflictInfo struct {
	RuleID1 string `json:"ruleId1"`
	RuleID2 string `json:"ruleId2"`
	Reason  string `json:"reason"`
}

// SupersedingInfo records that Superseding replaced Superseded.
type SupersedingInfo struct {
	Superseded  string `json:"superseded"`
	Superseding string `json:"superseding"`
}

// RuleSelection is a single entry of the final selection.
type RuleSelection struct {
	RuleID   string `json:"ruleId"`
	Reason   Reason `json:"reason"`
	Selected bool   `json:"selected"`
}

// Result is the outcome of [Resolver.Resolve].
type Result struct {
	FinalSelections []RuleSelection   `json:"finalSelections"`
	Dependencies    []DependencyInfo  `json:"dependencies"`
	Conflicts       []ConflictInfo    `json:"conflicts"`
	Superseding     []SupersedingInfo `json:"superseding"`
	Warnings        []string          `json:"warnings"`
}

// HasConflicts reports whether any conflicts were detected.
func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// IDs returns the rule identifiers of the final selections, in order.
func (r *Result) IDs() []string {
	ids := make([]string, 0, len(r.FinalSelections))
	for _, s := range r.FinalSelections {
		ids = append(ids, s.RuleID)
	}

	return ids
}

// Exclude returns a copy of selections without the given rule.
func Exclude(selections []RuleSelection, ruleID string) []RuleSelection {
	out := make([]RuleSelection, 0, len(selections))
	for _, s := range selections {
		if s.RuleID != ruleID {
			out = append(out, s)
		}
	}

	return out
}
