package modifier

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned when the ON and DON'T CARE sets of a
// combination overlap.
var ErrInvalidInput = errors.New("invalid modifier combination")

// Combination is a boolean condition over the modifier keys: every ON key is
// pressed, no OFF key is pressed, and the remaining keys do not matter.
//
// Combination values are immutable and comparable with ==. The zero value
// is not normalised; use OfOnKeys or OfOnAndDontCareKeys.
type Combination struct {
	on  KeySet
	off KeySet
}

// Base is the combination active when no modifier key is pressed.
var Base = OfOnKeys(0)

// OfOnKeys returns the combination with the given keys ON and every other
// key in its default state.
func OfOnKeys(on KeySet) Combination {
	return simplifyInput(on, 0)
}

// OfOnAndDontCareKeys returns the combination with the given keys ON, the
// given keys DON'T CARE, and every other key in its default state.
// The two sets must be disjoint.
func OfOnAndDontCareKeys(on, dontCare KeySet) (Combination, error) {
	if overlap := on.Intersect(dontCare); !overlap.IsEmpty() {
		return Combination{}, fmt.Errorf("%w: keys %s are both on and don't care", ErrInvalidInput, overlap)
	}
	return simplifyInput(on, dontCare), nil
}

// MustOfOnAndDontCareKeys is like OfOnAndDontCareKeys but panics on error.
// Use only for known-valid sets in initialization code and tests.
func MustOfOnAndDontCareKeys(on, dontCare KeySet) Combination {
	c, err := OfOnAndDontCareKeys(on, dontCare)
	if err != nil {
		panic(err)
	}
	return c
}

// OnKeys returns the keys that must be pressed.
func (c Combination) OnKeys() KeySet {
	return c.on
}

// OffKeys returns the keys that must not be pressed.
func (c Combination) OffKeys() KeySet {
	return c.off
}

// DontCareKeys returns the keys whose state does not matter.
func (c Combination) DontCareKeys() KeySet {
	return Universe.Difference(c.on).Difference(c.off)
}

// IsBase returns true if no key is required to be pressed.
func (c Combination) IsBase() bool {
	return c.on.IsEmpty()
}

// IsActive reports whether the combination holds while exactly the given
// keys are held down. A generic key counts as pressed when either of its
// variants is pressed.
func (c Combination) IsActive(pressed KeySet) bool {
	effective := pressed
	for _, g := range groups {
		if pressed.Has(g[1]) || pressed.Has(g[2]) {
			effective = effective.With(g[0])
		}
	}
	return effective.Intersect(c.on) == c.on && effective.Intersect(c.off).IsEmpty()
}

// Compare orders combinations by their ON keys, then by their OFF keys in
// inverted order. Each key set is compared element by element, latest
// declared key first, and a set that is a prefix of another sorts first.
// Returns -1, 0 or +1.
func (c Combination) Compare(o Combination) int {
	if r := compareKeySets(c.on, o.on); r != 0 {
		return r
	}
	return -compareKeySets(c.off, o.off)
}

func compareKeySets(a, b KeySet) int {
	ak, bk := a.reversed(), b.reversed()
	for i := 0; i < len(ak) && i < len(bk); i++ {
		if ak[i] != bk[i] {
			// Later declared keys sort first.
			return cmp.Compare(bk[i], ak[i])
		}
	}
	return cmp.Compare(len(ak), len(bk))
}

// String returns the combination in LDML notation, e.g. "cmd+altR+caps?".
// The base combination renders as "".
func (c Combination) String() string {
	return format(c)
}

// GoString returns a debugging representation with the raw key sets.
func (c Combination) GoString() string {
	return fmt.Sprintf("modifier.Combination{on: %s, off: %s}", c.on, c.off)
}

// ParseCombination parses a combination in LDML notation, e.g.
// "cmd+ctrl+altR+opt?". Keys suffixed with "?" are DON'T CARE. The empty
// string is the base combination.
func ParseCombination(text string) (Combination, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Base, nil
	}

	var on, dontCare KeySet
	for _, part := range strings.Split(text, "+") {
		part = strings.TrimSpace(part)
		target := &on
		if name, ok := strings.CutSuffix(part, "?"); ok {
			part = name
			target = &dontCare
		}
		k, err := ParseKey(part)
		if err != nil {
			return Combination{}, fmt.Errorf("parsing %q: %w", text, err)
		}
		if on.Has(k) || dontCare.Has(k) {
			return Combination{}, fmt.Errorf("%w: key %s repeated in %q", ErrInvalidInput, k, text)
		}
		*target = target.With(k)
	}
	return OfOnAndDontCareKeys(on, dontCare)
}

// MustParseCombination is like ParseCombination but panics on error.
func MustParseCombination(text string) Combination {
	c, err := ParseCombination(text)
	if err != nil {
		panic("invalid modifier combination: " + text + ": " + err.Error())
	}
	return c
}
