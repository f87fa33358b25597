package modifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a modifier key name is not recognized.
var ErrUnknownKey = errors.New("unknown modifier key")

// Key represents a modifier key.
// The declaration order is the order keys are written in the textual form.
type Key uint8

const (
	// Command is the Command key (macOS).
	Command Key = iota

	// Control keys
	Control
	ControlLeft
	ControlRight

	// Alt keys
	Alt
	AltLeft
	AltRight

	// Option keys
	Option
	OptionLeft
	OptionRight

	// CapsLock is the Caps Lock key.
	CapsLock

	// Shift keys
	Shift
	ShiftLeft
	ShiftRight

	numKeys
)

// keyInfo holds the relationships of a single key.
type keyInfo struct {
	text     string
	parent   Key
	children []Key
	sibling  Key
	hasPar   bool
	hasSib   bool
}

// groups lists every generic key with its left and right variants.
var groups = [...][3]Key{
	{Control, ControlLeft, ControlRight},
	{Alt, AltLeft, AltRight},
	{Option, OptionLeft, OptionRight},
	{Shift, ShiftLeft, ShiftRight},
}

var keyTexts = [numKeys]string{
	Command:      "cmd",
	Control:      "ctrl",
	ControlLeft:  "ctrlL",
	ControlRight: "ctrlR",
	Alt:          "alt",
	AltLeft:      "altL",
	AltRight:     "altR",
	Option:       "opt",
	OptionLeft:   "optL",
	OptionRight:  "optR",
	CapsLock:     "caps",
	Shift:        "shift",
	ShiftLeft:    "shiftL",
	ShiftRight:   "shiftR",
}

// Lookup tables, built once from keyTexts and groups.
var (
	keyTable    = buildKeyTable()
	keyByText   = buildKeyByText()
	allKeysList = selectKeys(func(Key) bool { return true })
	parentKeys  = selectKeys(func(k Key) bool { return len(keyTable[k].children) > 0 })
	singleKeys  = selectKeys(func(k Key) bool { return !keyTable[k].hasPar && len(keyTable[k].children) == 0 })
)

func buildKeyTable() [numKeys]keyInfo {
	var table [numKeys]keyInfo
	for k := range table {
		table[k].text = keyTexts[k]
	}
	for _, g := range groups {
		parent, left, right := g[0], g[1], g[2]
		table[parent].children = []Key{left, right}
		table[left].parent, table[left].hasPar = parent, true
		table[right].parent, table[right].hasPar = parent, true
		table[left].sibling, table[left].hasSib = right, true
		table[right].sibling, table[right].hasSib = left, true
	}
	return table
}

func buildKeyByText() map[string]Key {
	m := make(map[string]Key, numKeys)
	for k, text := range keyTexts {
		m[text] = Key(k)
	}
	return m
}

func selectKeys(keep func(Key) bool) []Key {
	var keys []Key
	for k := Key(0); k < numKeys; k++ {
		if keep(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// String returns the LDML name of the key, e.g. "ctrl" or "altR".
func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", k)
	}
	return keyTable[k].text
}

// Valid returns true if k is a declared modifier key.
func (k Key) Valid() bool {
	return k < numKeys
}

// Parent returns the generic key of a left or right variant.
func (k Key) Parent() (Key, bool) {
	if !k.Valid() {
		return 0, false
	}
	return keyTable[k].parent, keyTable[k].hasPar
}

// Children returns the left and right variants of a generic key.
// Returns nil for keys without variants.
func (k Key) Children() []Key {
	if !k.Valid() || len(keyTable[k].children) == 0 {
		return nil
	}
	return append([]Key(nil), keyTable[k].children...)
}

// Sibling returns the opposite side of a left or right variant.
func (k Key) Sibling() (Key, bool) {
	if !k.Valid() {
		return 0, false
	}
	return keyTable[k].sibling, keyTable[k].hasSib
}

// IsParent returns true if the key has left and right variants.
func (k Key) IsParent() bool {
	return k.Valid() && len(keyTable[k].children) > 0
}

// IsSingle returns true if the key has neither a parent nor variants.
func (k Key) IsSingle() bool {
	return k.Valid() && !keyTable[k].hasPar && len(keyTable[k].children) == 0
}

// group returns the key heading the group k belongs to: the parent of a
// variant, or k itself.
func (k Key) group() Key {
	if p, ok := k.Parent(); ok {
		return p
	}
	return k
}

// AllKeys returns every modifier key in declaration order.
func AllKeys() []Key {
	return append([]Key(nil), allKeysList...)
}

// Parents returns the keys that have left and right variants.
func Parents() []Key {
	return append([]Key(nil), parentKeys...)
}

// Singles returns the keys that have neither a parent nor variants.
func Singles() []Key {
	return append([]Key(nil), singleKeys...)
}

// ParseKey returns the Key for an LDML key name such as "ctrlL".
// Matching is case-sensitive.
func ParseKey(name string) (Key, error) {
	if k, ok := keyByText[strings.TrimSpace(name)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}
