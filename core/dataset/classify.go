package dataset

import "github.com/huangsam/viability/schema"

// Rule assigns a kind to datasets whose column set contains every AllOf
// column and, when AnyOf is set, at least one AnyOf column.
type Rule struct {
	AllOf []string           `yaml:"all_of"`
	AnyOf []string           `yaml:"any_of"`
	Kind  schema.DatasetKind `yaml:"kind"`
}

// Matches reports whether the rule applies to a column set.
// A rule without columns never matches.
func (r Rule) Matches(cols map[string]struct{}) bool {
	if len(r.AllOf) == 0 && len(r.AnyOf) == 0 {
		return false
	}
	for _, c := range r.AllOf {
		if _, ok := cols[c]; !ok {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, c := range r.AnyOf {
		if _, ok := cols[c]; ok {
			return true
		}
	}
	return false
}

// Classify returns the kind of the first matching rule, or OtherKind.
func Classify(cols map[string]struct{}, rules []Rule) schema.DatasetKind {
	for _, r := range rules {
		if r.Matches(cols) {
			return r.Kind
		}
	}
	return schema.OtherKind
}
