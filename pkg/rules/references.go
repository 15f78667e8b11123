package rules

import "fmt"

// Relation names a relationship a rule declares with another rule.
type Relation string

const (
	RelationRequires   Relation = "requires"
	RelationConflicts  Relation = "conflicts"
	RelationSupersedes Relation = "supersedes"
)

// Reference is a relationship from one rule to another.
type Reference struct {
	RuleID   string
	Relation Relation
	Target   string
}

func (r Reference) String() string {
	return fmt.Sprintf("%s %s %s", r.RuleID, r.Relation, r.Target)
}

// DanglingReferences returns the references of list whose target is not
// known, in the order of list and its relation fields.
func DanglingReferences(list []*Rule, known func(id string) bool) []Reference {
	var out []Reference

	for _, r := range list {
		for _, rel := range []struct {
			name Relation
			ids  []string
		}{
			{RelationRequires, r.Requires},
			{RelationConflicts, r.Conflicts},
			{RelationSupersedes, r.Supersedes},
		} {
			for _, id := range rel.ids {
				if !known(id) {
					out = append(out, Reference{RuleID: r.ID, Relation: rel.name, Target: id})
				}
			}
		}
	}

	return out
}
