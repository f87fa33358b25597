package keyboard

import (
	"slices"

	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

// KeyMap assigns character maps to positions for a set of modifier
// combinations.
type KeyMap struct {
	modifiers     modifier.CombinationSet
	characterMaps []CharacterMap
}

// NewKeyMap returns a key map with its character maps sorted by position.
func NewKeyMap(modifiers modifier.CombinationSet, characterMaps []CharacterMap) KeyMap {
	sorted := slices.Clone(characterMaps)
	slices.SortFunc(sorted, CharacterMap.Compare)
	return KeyMap{modifiers: modifiers, characterMaps: sorted}
}

// Modifiers returns the combinations under which the key map is active.
func (k KeyMap) Modifiers() modifier.CombinationSet {
	return k.modifiers
}

// CharacterMaps returns the character maps in position order.
func (k KeyMap) CharacterMaps() []CharacterMap {
	return slices.Clone(k.characterMaps)
}

// Lookup returns the character map at pos.
func (k KeyMap) Lookup(pos Position) (CharacterMap, bool) {
	i, found := slices.BinarySearchFunc(k.characterMaps, pos, func(c CharacterMap, p Position) int {
		return int(c.Position) - int(p)
	})
	if !found {
		return CharacterMap{}, false
	}
	return k.characterMaps[i], true
}

// Compare orders key maps by their modifier sets.
func (k KeyMap) Compare(o KeyMap) int {
	return k.modifiers.Compare(o.modifiers)
}
