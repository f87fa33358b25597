// Package modifier implements the modifier-key algebra of the LDML Keyboard
// Standard.
//
// This package defines the types used to describe when a key map is active:
//
//   - Key: a modifier key (cmd, ctrl, ctrlL, ctrlR, alt, ..., shiftR)
//   - KeySet: a set of modifier keys stored as a bitmask
//   - Combination: keys required ON, keys required OFF, and implicitly the
//     keys whose state does not matter (DON'T CARE)
//   - CombinationSet: a disjunction of combinations in canonical form
//
// # Key Relationships
//
// Control, Alt, Option and Shift are generic keys with a left and a right
// variant (ctrlL/ctrlR, ...). A generic key is pressed when either side is
// pressed. Command and CapsLock have no variants.
//
// # Textual Form
//
// Combinations are written as keys joined by "+", ON keys first, followed by
// DON'T CARE keys suffixed with "?":
//
//	cmd+ctrl+altR+opt?+caps?+shiftL?
//
// OFF keys are never written. A combination set joins its members with a
// single space. The empty string denotes the base combination (no modifier
// pressed), so a set holding the base next to other members is written with
// a leading space: " cmd+caps".
//
// # Simplification
//
// Every Combination is normalised on construction and every CombinationSet
// is reduced to its simplest equivalent form, so two values describing the
// same boolean condition compare equal.
package modifier
