package keyboard

import (
	"slices"

	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

// Keyboard is a complete layout for one keyboard id.
type Keyboard struct {
	id         ID
	names      []string
	keyMaps    []KeyMap
	transforms []Transform
}

// New returns a keyboard with its key maps sorted by modifiers and its
// transforms sorted by sequence.
func New(id ID, names []string, keyMaps []KeyMap, transforms []Transform) *Keyboard {
	kb := &Keyboard{
		id:         id,
		names:      slices.Clone(names),
		keyMaps:    slices.Clone(keyMaps),
		transforms: slices.Clone(transforms),
	}
	slices.SortFunc(kb.keyMaps, KeyMap.Compare)
	slices.SortFunc(kb.transforms, Transform.Compare)
	return kb
}

// ID returns the keyboard id.
func (kb *Keyboard) ID() ID {
	return kb.id
}

// Names returns the display names of the keyboard.
func (kb *Keyboard) Names() []string {
	return slices.Clone(kb.names)
}

// KeyMaps returns the key maps in modifier order.
func (kb *Keyboard) KeyMaps() []KeyMap {
	return slices.Clone(kb.keyMaps)
}

// Transforms returns the transforms in sequence order.
func (kb *Keyboard) Transforms() []Transform {
	return slices.Clone(kb.transforms)
}

// BaseMap returns the key map active with no modifier pressed.
func (kb *Keyboard) BaseMap() (KeyMap, bool) {
	for _, km := range kb.keyMaps {
		if km.modifiers.IsBase() {
			return km, true
		}
	}
	return KeyMap{}, false
}

// Output returns what the key at pos produces while exactly the given
// modifier keys are held.
func (kb *Keyboard) Output(pos Position, pressed modifier.KeySet) (CharacterMap, bool) {
	for _, km := range kb.keyMaps {
		if !km.modifiers.IsActive(pressed) {
			continue
		}
		if cm, ok := km.Lookup(pos); ok {
			return cm, true
		}
	}
	return CharacterMap{}, false
}
