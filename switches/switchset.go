package switches

import "strings"

type rule struct {
	prefix string
	sw     Switch
}

// SwitchSet is an ordered mapping from dotted name prefixes to
// switches, resolved by longest-prefix match. A prefix p matches a
// name iff the name equals p or starts with p followed by a dot; the
// empty prefix matches every name and acts as a catch-all default.
//
// The set is backed by an ordered slice so that equal-length matches
// resolve to the first-registered rule deterministically. Register a
// fully built set before handing it to a manager; switches themselves
// (thresholds, on/off flags) stay mutable at runtime, but adding or
// replacing rules only affects tracer bindings after the owning
// manager resweeps.
type SwitchSet struct {
	rules []rule
}

// NewSwitchSet creates an empty SwitchSet.
func NewSwitchSet() *SwitchSet {
	return &SwitchSet{}
}

// Add registers sw under prefix, after any existing rules. The prefix
// is trimmed and a trailing dot is dropped, so "App.Sub." and
// "App.Sub" name the same rule. Registering the same prefix again
// replaces its switch in place, keeping the original registration
// order.
func (s *SwitchSet) Add(prefix string, sw Switch) *SwitchSet {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ".")
	for i, r := range s.rules {
		if r.prefix == prefix {
			s.rules[i].sw = sw
			return s
		}
	}
	s.rules = append(s.rules, rule{prefix: prefix, sw: sw})
	return s
}

// Len returns the number of registered rules.
func (s *SwitchSet) Len() int {
	return len(s.rules)
}

// prefixMatches reports whether prefix matches name under dotted
// hierarchical semantics.
func prefixMatches(prefix, name string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(name, prefix) {
		return false
	}
	return len(name) == len(prefix) || name[len(prefix)] == '.'
}

// FindBestMatch returns the switch of the longest registered prefix
// matching name. Ties on length resolve to the first-registered rule.
// ok is false when no prefix matches, which disables logging for that
// name as far as this set is concerned.
func (s *SwitchSet) FindBestMatch(name string) (sw Switch, ok bool) {
	best := -1
	for i, r := range s.rules {
		if !prefixMatches(r.prefix, name) {
			continue
		}
		if best < 0 || len(r.prefix) > len(s.rules[best].prefix) {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}
	return s.rules[best].sw, true
}
