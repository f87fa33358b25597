package modifier

import (
	"slices"
	"strings"
)

// A group state describes a generic key and its two variants as three
// characters in the order <parent><left><right>:
//
//	'1' ON, '0' OFF, '?' DON'T CARE
//
// Single keys (cmd, caps) use the same notation with "??" for the missing
// variants. Input states additionally use '-' for a key given in neither the
// ON nor the DON'T CARE set.
//
// The normalised form favours DON'T CARE over OFF wherever both describe the
// same condition: no Shift pressed is "0??", not "000".

// inputStates maps every input state of a group to its normalised state.
var inputStates = map[string]string{
	"---": "0??", "--1": "?01", "--?": "?0?",
	"-1-": "?10", "-11": "?11", "-1?": "?1?",
	"-?-": "??0", "-?1": "??1", "-??": "???",
	"1--": "1??", "1-1": "??1", "1-?": "1??",
	"11-": "?1?", "111": "?11", "11?": "?1?",
	"1?-": "1??", "1?1": "??1", "1??": "1??",
	"?--": "???", "?-1": "??1", "?-?": "?0?",
	"?1-": "?1?", "?11": "?11", "?1?": "?1?",
	"??-": "??0", "??1": "??1", "???": "???",
}

// noMerge marks a pair of group states whose disjunction is not a single
// group state.
const noMerge = "%"

// mergeStates maps an unordered pair of distinct normalised group states to
// the state of their disjunction. "A? AL" becomes "A?", "AL AL+AR" becomes
// "AL+AR?".
var mergeStates = map[[2]string]string{
	{"1??", "0??"}: "???", {"?10", "0??"}: "??0", {"?1?", "0??"}: noMerge,
	{"??0", "0??"}: "??0", {"?11", "0??"}: noMerge, {"?01", "0??"}: "?0?",
	{"??1", "0??"}: noMerge, {"?0?", "0??"}: "?0?", {"???", "0??"}: "???",

	{"?10", "1??"}: "1??", {"?1?", "1??"}: "1??", {"??0", "1??"}: "???",
	{"?11", "1??"}: "1??", {"?01", "1??"}: "1??", {"??1", "1??"}: "1??",
	{"?0?", "1??"}: "???", {"???", "1??"}: "???",

	{"?1?", "?10"}: "?1?", {"??0", "?10"}: "??0", {"?11", "?10"}: "?1?",
	{"?01", "?10"}: noMerge, {"??1", "?10"}: noMerge, {"?0?", "?10"}: noMerge,
	{"???", "?10"}: "???",

	{"??0", "?1?"}: noMerge, {"?11", "?1?"}: "?1?", {"?01", "?1?"}: noMerge,
	{"??1", "?1?"}: "1??", {"?0?", "?1?"}: "???", {"???", "?1?"}: "???",

	{"?11", "??0"}: noMerge, {"?01", "??0"}: noMerge, {"??1", "??0"}: "???",
	{"?0?", "??0"}: noMerge, {"???", "??0"}: "???",

	{"?01", "?11"}: "??1", {"??1", "?11"}: "??1", {"?0?", "?11"}: noMerge,
	{"???", "?11"}: "???",

	{"??1", "?01"}: "??1", {"?0?", "?01"}: "?0?", {"???", "?01"}: "???",

	{"?0?", "??1"}: noMerge, {"???", "??1"}: "???",

	{"???", "?0?"}: "???",
}

// groupKeys returns the keys a group state refers to, in state order.
func groupKeys(head Key) [3]Key {
	if children := keyTable[head].children; len(children) == 2 {
		return [3]Key{head, children[0], children[1]}
	}
	return [3]Key{head, head, head}
}

// inputState returns the input state of a group given the ON and DON'T CARE
// keys supplied by the caller.
func inputState(head Key, on, dontCare KeySet) string {
	keys := groupKeys(head)
	var b strings.Builder
	for _, k := range keys {
		switch {
		case on.Has(k):
			b.WriteByte('1')
		case dontCare.Has(k):
			b.WriteByte('?')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// groupState returns the normalised state of a group within a combination.
func groupState(head Key, on, off KeySet) string {
	state := func(k Key) byte {
		switch {
		case on.Has(k):
			return '1'
		case off.Has(k):
			return '0'
		default:
			return '?'
		}
	}
	if !head.IsParent() {
		return string([]byte{state(head), '?', '?'})
	}
	keys := groupKeys(head)
	return string([]byte{state(keys[0]), state(keys[1]), state(keys[2])})
}

// applyState adds the keys of a normalised group state to the ON and OFF
// sets.
func applyState(head Key, state string, on, off KeySet) (KeySet, KeySet) {
	keys := groupKeys(head)
	for i := 0; i < len(state) && i < len(keys); i++ {
		switch state[i] {
		case '1':
			on = on.With(keys[i])
		case '0':
			off = off.With(keys[i])
		}
	}
	return on, off
}

// simplifyInput normalises an ON set and a disjoint DON'T CARE set into a
// combination. Every key that is neither ON nor DON'T CARE is OFF, except
// where a generic key is ON or DON'T CARE, which frees its variants.
func simplifyInput(on, dontCare KeySet) Combination {
	var c Combination
	for _, head := range parentKeys {
		in := inputState(head, on, dontCare)
		out, ok := inputStates[in]
		if !ok {
			panic("modifier: no normalised state for input " + in)
		}
		c.on, c.off = applyState(head, out, c.on, c.off)
	}
	for _, k := range singleKeys {
		switch {
		case on.Has(k):
			c.on = c.on.With(k)
		case !dontCare.Has(k):
			c.off = c.off.With(k)
		}
	}
	return c
}

// format renders a combination in LDML notation.
func format(c Combination) string {
	var onKeys, dontCareKeys KeySet
	for _, head := range parentKeys {
		state := groupState(head, c.on, c.off)
		keys := groupKeys(head)
		if state[1] == '?' && state[2] == '?' {
			switch state[0] {
			case '1':
				onKeys = onKeys.With(head)
			case '?':
				dontCareKeys = dontCareKeys.With(head)
			}
			continue
		}
		for i := 1; i < 3; i++ {
			switch state[i] {
			case '1':
				onKeys = onKeys.With(keys[i])
			case '?':
				dontCareKeys = dontCareKeys.With(keys[i])
			}
		}
	}
	for _, k := range singleKeys {
		switch {
		case c.on.Has(k):
			onKeys = onKeys.With(k)
		case !c.off.Has(k):
			dontCareKeys = dontCareKeys.With(k)
		}
	}

	parts := make([]string, 0, onKeys.Len()+dontCareKeys.Len())
	for _, k := range onKeys.Keys() {
		parts = append(parts, k.String())
	}
	for _, k := range dontCareKeys.Keys() {
		parts = append(parts, k.String()+"?")
	}
	return strings.Join(parts, "+")
}

// simplifySet reduces a collection of combinations to its simplest
// equivalent form, sorted. Passes are repeated until a pass merges nothing.
func simplifySet(combinations []Combination) []Combination {
	current := dedupe(combinations)
	for {
		before := len(current)
		current = simplifyOnePass(current)
		if len(current) == before {
			break
		}
	}
	slices.SortFunc(current, Combination.Compare)
	return current
}

// simplifyOnePass sorts the combinations and tries to merge each one into
// the result of its predecessor. Several passes may be needed to reach the
// simplest form.
func simplifyOnePass(combinations []Combination) []Combination {
	if len(combinations) < 2 {
		return combinations
	}
	sorted := slices.Clone(combinations)
	slices.SortFunc(sorted, Combination.Compare)

	result := make([]Combination, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if merged, ok := mergeCombinations(current, next); ok {
			current = merged
			continue
		}
		result = append(result, current)
		current = next
	}
	result = append(result, current)
	return dedupe(result)
}

// mergeCombinations returns the single combination equivalent to c1 OR c2,
// if there is one.
func mergeCombinations(c1, c2 Combination) (Combination, bool) {
	if c1 == c2 {
		return c1, true
	}
	onDiff := c1.on.SymmetricDifference(c2.on)
	offDiff := c1.off.SymmetricDifference(c2.off)
	head, ok := sharedGroup(onDiff.Union(offDiff))
	if !ok {
		return Combination{}, false
	}

	s1 := groupState(head, c1.on, c1.off)
	s2 := groupState(head, c2.on, c2.off)
	result, ok := mergeStates[[2]string{s1, s2}]
	if !ok {
		result, ok = mergeStates[[2]string{s2, s1}]
	}
	if !ok {
		panic("modifier: unknown group state pair " + s1 + "," + s2)
	}
	if result == noMerge {
		return Combination{}, false
	}

	on := c1.on.Intersect(c2.on)
	off := c1.off.Intersect(c2.off)
	on, off = applyState(head, result, on, off)
	return Combination{on: on, off: off}, true
}

// sharedGroup reports the group head when every key in keys belongs to the
// same group.
func sharedGroup(keys KeySet) (Key, bool) {
	list := keys.Keys()
	if len(list) == 0 {
		return 0, false
	}
	head := list[0].group()
	for _, k := range list[1:] {
		if k.group() != head {
			return 0, false
		}
	}
	return head, true
}

// dedupe removes repeated combinations, keeping the first occurrence.
func dedupe(combinations []Combination) []Combination {
	seen := make(map[Combination]bool, len(combinations))
	out := make([]Combination, 0, len(combinations))
	for _, c := range combinations {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
