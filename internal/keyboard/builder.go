package keyboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

// Builder collects the contents of a layout while a source file is parsed.
// A Builder is not safe for concurrent use.
type Builder struct {
	ids        []ID
	names      []string
	maps       map[modifier.Combination]map[Position]CharacterMap
	order      []modifier.Combination
	transforms map[string]string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		maps:       make(map[modifier.Combination]map[Position]CharacterMap),
		transforms: make(map[string]string),
	}
}

// AddName adds a display name. Repeated names are ignored.
func (b *Builder) AddName(name string) {
	if !slices.Contains(b.names, name) {
		b.names = append(b.names, name)
	}
}

// AddKeyboardIDs adds the ids the layout is published under.
func (b *Builder) AddKeyboardIDs(ids ...ID) {
	for _, id := range ids {
		if !slices.ContainsFunc(b.ids, id.Equal) {
			b.ids = append(b.ids, id)
		}
	}
}

// AddCharacterMap records the output of a key under a combination. Adding
// the same mapping twice is allowed; a different mapping at an occupied
// position is an error.
func (b *Builder) AddCharacterMap(combination modifier.Combination, cm CharacterMap) error {
	positions, ok := b.maps[combination]
	if !ok {
		positions = make(map[Position]CharacterMap)
		b.maps[combination] = positions
		b.order = append(b.order, combination)
	}
	if existing, ok := positions[cm.Position]; ok {
		if existing.Equal(cm) {
			return nil
		}
		return fmt.Errorf("%w: %s at [%s] is %q, cannot add %q",
			ErrConflictingMapping, cm.Position, combination, existing.Output, cm.Output)
	}
	positions[cm.Position] = cm
	return nil
}

// AddCharacterMaps records the same output under several combinations.
func (b *Builder) AddCharacterMaps(combinations []modifier.Combination, cm CharacterMap) error {
	for _, c := range combinations {
		if err := b.AddCharacterMap(c, cm); err != nil {
			return err
		}
	}
	return nil
}

// AddTransform records a transform. Adding the same transform twice is
// allowed.
func (b *Builder) AddTransform(sequence, output string) error {
	if existing, ok := b.transforms[sequence]; ok && existing != output {
		return fmt.Errorf("%w: %q is %q, cannot add %q", ErrConflictingTransform, sequence, existing, output)
	}
	b.transforms[sequence] = output
	return nil
}

// TransformSequences returns the recorded transform sequences, sorted.
func (b *Builder) TransformSequences() []string {
	out := make([]string, 0, len(b.transforms))
	for seq := range b.transforms {
		out = append(out, seq)
	}
	slices.Sort(out)
	return out
}

// StartsTransform returns true if some transform sequence begins with s.
func (b *Builder) StartsTransform(s string) bool {
	for seq := range b.transforms {
		if strings.HasPrefix(seq, s) {
			return true
		}
	}
	return false
}

// Build returns one keyboard per keyboard id, sorted by id. Combinations
// with identical character maps share a key map.
func (b *Builder) Build() ([]*Keyboard, error) {
	if len(b.ids) == 0 {
		return nil, ErrNoKeyboardID
	}
	if len(b.names) == 0 {
		return nil, ErrNoName
	}

	type group struct {
		combinations []modifier.Combination
		maps         []CharacterMap
	}
	var groups []*group
	byContents := make(map[string]*group)
	for _, c := range b.order {
		maps := make([]CharacterMap, 0, len(b.maps[c]))
		for _, cm := range b.maps[c] {
			maps = append(maps, cm)
		}
		slices.SortFunc(maps, CharacterMap.Compare)

		var key strings.Builder
		for _, cm := range maps {
			key.WriteString(cm.key())
			key.WriteByte('\x1e')
		}
		g, ok := byContents[key.String()]
		if !ok {
			g = &group{maps: maps}
			byContents[key.String()] = g
			groups = append(groups, g)
		}
		g.combinations = append(g.combinations, c)
	}

	keyMaps := make([]KeyMap, 0, len(groups))
	for _, g := range groups {
		keyMaps = append(keyMaps, NewKeyMap(modifier.NewCombinationSet(g.combinations...), g.maps))
	}

	transforms := make([]Transform, 0, len(b.transforms))
	for seq, out := range b.transforms {
		transforms = append(transforms, Transform{Sequence: seq, Output: out})
	}

	ids := slices.Clone(b.ids)
	slices.SortFunc(ids, ID.Compare)
	keyboards := make([]*Keyboard, 0, len(ids))
	for _, id := range ids {
		keyboards = append(keyboards, New(id, b.names, keyMaps, transforms))
	}
	return keyboards, nil
}
