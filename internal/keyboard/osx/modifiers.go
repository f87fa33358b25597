package osx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

// ErrUnknownModifier is returned for a modifier token the parser does not know.
var ErrUnknownModifier = errors.New("unknown modifier token")

var modifierTokens = map[string]modifier.Key{
	"anyShift":     modifier.Shift,
	"shift":        modifier.ShiftLeft,
	"rightShift":   modifier.ShiftRight,
	"anyOption":    modifier.Option,
	"option":       modifier.OptionLeft,
	"rightOption":  modifier.OptionRight,
	"anyControl":   modifier.Control,
	"control":      modifier.ControlLeft,
	"rightControl": modifier.ControlRight,
	"command":      modifier.Command,
	"caps":         modifier.CapsLock,
}

// ParseModifiers converts the keys attribute of a <modifier> element, e.g.
// "anyShift caps? command", into a combination.
func ParseModifiers(keys string) (modifier.Combination, error) {
	var on, dontCare modifier.KeySet
	for _, token := range strings.Fields(keys) {
		name, optional := strings.CutSuffix(token, "?")
		k, ok := modifierTokens[name]
		if !ok {
			return modifier.Combination{}, fmt.Errorf("%w: %q", ErrUnknownModifier, token)
		}
		if optional {
			dontCare = dontCare.With(k)
		} else {
			on = on.With(k)
		}
	}
	c, err := modifier.OfOnAndDontCareKeys(on, dontCare)
	if err != nil {
		return modifier.Combination{}, fmt.Errorf("modifier keys %q: %w", keys, err)
	}
	return c, nil
}
