package modifier

import (
	"cmp"
	"fmt"
	"strings"
)

// CombinationSet is a disjunction of combinations: it is active when any of
// its combinations is active. The set is always stored simplified and
// sorted, so equivalent sets have identical members.
type CombinationSet struct {
	combinations []Combination
}

// NewCombinationSet returns the canonical set for the given combinations.
func NewCombinationSet(combinations ...Combination) CombinationSet {
	return CombinationSet{combinations: simplifySet(combinations)}
}

// Combine merges the combinations of several sets and simplifies the result.
// It is used when identical key maps are found under different modifiers.
func Combine(sets ...CombinationSet) CombinationSet {
	var all []Combination
	for _, s := range sets {
		all = append(all, s.combinations...)
	}
	return NewCombinationSet(all...)
}

// Combinations returns the members of the set in canonical order.
func (s CombinationSet) Combinations() []Combination {
	return append([]Combination(nil), s.combinations...)
}

// Len returns the number of combinations in the set.
func (s CombinationSet) Len() int {
	return len(s.combinations)
}

// IsBase returns true if the set is active with no modifier key pressed.
func (s CombinationSet) IsBase() bool {
	for _, c := range s.combinations {
		if c.IsBase() {
			return true
		}
	}
	return false
}

// IsActive reports whether any combination holds for the pressed keys.
func (s CombinationSet) IsActive(pressed KeySet) bool {
	for _, c := range s.combinations {
		if c.IsActive(pressed) {
			return true
		}
	}
	return false
}

// Equal returns true if both sets contain the same combinations.
func (s CombinationSet) Equal(o CombinationSet) bool {
	return s.Compare(o) == 0
}

// Compare orders sets member by member; when one set is a prefix of the
// other, the smaller set sorts first.
func (s CombinationSet) Compare(o CombinationSet) int {
	for i := 0; i < len(s.combinations) && i < len(o.combinations); i++ {
		if r := s.combinations[i].Compare(o.combinations[i]); r != 0 {
			return r
		}
	}
	return cmp.Compare(len(s.combinations), len(o.combinations))
}

// String returns the combinations in LDML notation separated by a space.
// The base combination is written as the empty string, so a set holding it
// next to other members starts with a space.
func (s CombinationSet) String() string {
	parts := make([]string, len(s.combinations))
	for i, c := range s.combinations {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// ParseCombinationSet parses space separated combinations such as
// "shift caps" or "altR+caps? ctrl+alt+caps?". Members are separated by a
// single space and an empty member is the base combination, so " cmd+caps"
// holds the base and cmd+caps, as String writes it. A blank text is the set
// holding only the base combination.
func ParseCombinationSet(text string) (CombinationSet, error) {
	if strings.TrimSpace(text) == "" {
		return NewCombinationSet(Base), nil
	}
	fields := strings.Split(text, " ")
	combinations := make([]Combination, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCombination(f)
		if err != nil {
			return CombinationSet{}, fmt.Errorf("parsing modifier set: %w", err)
		}
		combinations = append(combinations, c)
	}
	return NewCombinationSet(combinations...), nil
}
