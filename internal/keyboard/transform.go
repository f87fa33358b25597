package keyboard

import "strings"

// Transform replaces a typed sequence, usually a dead key followed by a
// base character, with its output.
type Transform struct {
	Sequence string
	Output   string
}

// Compare orders transforms by sequence.
func (t Transform) Compare(o Transform) int {
	if r := strings.Compare(t.Sequence, o.Sequence); r != 0 {
		return r
	}
	return strings.Compare(t.Output, o.Output)
}
