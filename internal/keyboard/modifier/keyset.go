package modifier

import (
	"math/bits"
	"strings"
)

// KeySet is a set of modifier keys.
type KeySet uint16

// Universe contains every modifier key.
const Universe KeySet = 1<<numKeys - 1

// NewKeySet returns a set containing the given keys.
func NewKeySet(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

// Has returns true if s contains k.
func (s KeySet) Has(k Key) bool {
	return k.Valid() && s&(1<<k) != 0
}

// With returns a new set with k added.
func (s KeySet) With(k Key) KeySet {
	if !k.Valid() {
		return s
	}
	return s | 1<<k
}

// Without returns a new set with k removed.
func (s KeySet) Without(k Key) KeySet {
	return s &^ (1 << k)
}

// Union returns the keys in s or o.
func (s KeySet) Union(o KeySet) KeySet {
	return s | o
}

// Intersect returns the keys in both s and o.
func (s KeySet) Intersect(o KeySet) KeySet {
	return s & o
}

// Difference returns the keys in s but not in o.
func (s KeySet) Difference(o KeySet) KeySet {
	return s &^ o
}

// SymmetricDifference returns the keys in exactly one of s and o.
func (s KeySet) SymmetricDifference(o KeySet) KeySet {
	return s ^ o
}

// IsEmpty returns true if the set has no keys.
func (s KeySet) IsEmpty() bool {
	return s == 0
}

// Len returns the number of keys in the set.
func (s KeySet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Keys returns the keys of the set in declaration order.
func (s KeySet) Keys() []Key {
	keys := make([]Key, 0, s.Len())
	for k := Key(0); k < numKeys; k++ {
		if s.Has(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// reversed returns the keys of the set, latest declared first.
func (s KeySet) reversed() []Key {
	keys := make([]Key, 0, s.Len())
	for k := numKeys; k > 0; k-- {
		if s.Has(k - 1) {
			keys = append(keys, k-1)
		}
	}
	return keys
}

// String returns the keys as "{ctrl, shiftL}".
func (s KeySet) String() string {
	keys := s.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
