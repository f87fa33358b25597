// Package keyboard models keyboard layouts in the shape of the LDML Keyboard
// Standard.
//
// A Keyboard is a set of key maps, each of which assigns output strings to
// the ISO layout positions of the keys for one modifier.CombinationSet, plus
// the transforms (dead key sequences) of the layout.
//
// # Building Keyboards
//
// Platform parsers never construct Keyboards directly. They feed a Builder
// with names, ids, character maps and transforms as they read a source file:
//
//	b := keyboard.NewBuilder()
//	b.AddName("U.S.")
//	b.AddKeyboardIDs(ids...)
//	if err := b.AddCharacterMap(shift, keyboard.NewCharacterMap(pos, "A")); err != nil {
//	    return nil, err
//	}
//	keyboards, err := b.Build()
//
// Build merges the combinations that produce identical character maps into
// a single KeyMap and returns one Keyboard per keyboard id.
//
// # Hardware Maps
//
// KeycodeMap translates platform keycodes (OSX virtual key codes, Windows
// scan codes) into Positions. KeyboardIDMap resolves platform layout names
// into keyboard ids. Both are read from two column CSV resources.
package keyboard
