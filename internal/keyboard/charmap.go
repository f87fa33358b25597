package keyboard

import (
	"cmp"
	"slices"
	"strings"
)

// CharacterMap is the output of one key for one modifier combination.
type CharacterMap struct {
	Position Position
	Output   string
	// LongPress lists the alternate outputs offered while the key is held.
	LongPress []string
	// TransformNo marks keys whose output starts a transform sequence but
	// must not trigger it.
	TransformNo bool
}

// NewCharacterMap returns the character map of a key producing output.
func NewCharacterMap(pos Position, output string) CharacterMap {
	return CharacterMap{Position: pos, Output: output}
}

// WithLongPress returns a copy of c with the given long press outputs.
func (c CharacterMap) WithLongPress(outputs ...string) CharacterMap {
	c.LongPress = slices.Clone(outputs)
	return c
}

// MarkTransformNo returns a copy of c flagged with transform="no".
func (c CharacterMap) MarkTransformNo() CharacterMap {
	c.TransformNo = true
	return c
}

// Equal returns true if both character maps describe the same key output.
func (c CharacterMap) Equal(o CharacterMap) bool {
	return c.Position == o.Position &&
		c.Output == o.Output &&
		c.TransformNo == o.TransformNo &&
		slices.Equal(c.LongPress, o.LongPress)
}

// Compare orders character maps by position, then by output.
func (c CharacterMap) Compare(o CharacterMap) int {
	if r := cmp.Compare(c.Position, o.Position); r != 0 {
		return r
	}
	return strings.Compare(c.Output, o.Output)
}

// key returns a string identifying the character map contents.
func (c CharacterMap) key() string {
	var b strings.Builder
	b.WriteString(c.Position.String())
	b.WriteByte(0)
	b.WriteString(c.Output)
	b.WriteByte(0)
	b.WriteString(strings.Join(c.LongPress, "\x01"))
	if c.TransformNo {
		b.WriteString("\x00no")
	}
	return b.String()
}
