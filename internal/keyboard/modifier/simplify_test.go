package modifier

import (
	"slices"
	"testing"
)

var normalisedStates = []string{"0??", "1??", "?10", "?1?", "??0", "?11", "?01", "??1", "?0?", "???"}

func TestInputStatesComplete(t *testing.T) {
	symbols := []byte{'-', '1', '?'}
	for _, a := range symbols {
		for _, b := range symbols {
			for _, c := range symbols {
				in := string([]byte{a, b, c})
				out, ok := inputStates[in]
				if !ok {
					t.Errorf("inputStates[%q] missing", in)
					continue
				}
				if !slices.Contains(normalisedStates, out) {
					t.Errorf("inputStates[%q] = %q, not a normalised state", in, out)
				}
			}
		}
	}
}

func TestMergeStatesComplete(t *testing.T) {
	for i, a := range normalisedStates {
		for _, b := range normalisedStates[i+1:] {
			_, ab := mergeStates[[2]string{a, b}]
			_, ba := mergeStates[[2]string{b, a}]
			if ab == ba {
				t.Errorf("pair (%q, %q): want exactly one ordering in table, got %v/%v", a, b, ab, ba)
			}
		}
	}
	if got := len(mergeStates); got != 45 {
		t.Errorf("len(mergeStates) = %d, want 45", got)
	}
}

// physicalKeys are the keys that can actually be held down.
var physicalKeys = []Key{
	Command, ControlLeft, ControlRight, AltLeft, AltRight,
	OptionLeft, OptionRight, CapsLock, ShiftLeft, ShiftRight,
}

// forEachPressed calls fn with every subset of the physical keys.
func forEachPressed(fn func(KeySet)) {
	for mask := 0; mask < 1<<len(physicalKeys); mask++ {
		var pressed KeySet
		for i, k := range physicalKeys {
			if mask&(1<<i) != 0 {
				pressed = pressed.With(k)
			}
		}
		fn(pressed)
	}
}

func TestMergeCombinationsPreservesMeaning(t *testing.T) {
	specs := []string{
		"", "shift", "shiftL", "shiftR", "shiftL+shiftR", "shift?", "shiftL?", "shiftR?",
		"shiftL+shiftR?", "shiftR+shiftL?", "caps", "caps?", "shift+caps", "ctrl", "ctrlL",
		"altR+caps?", "ctrl+alt+caps?", "cmd", "cmd+opt?", "optR", "opt?",
	}
	for _, s1 := range specs {
		for _, s2 := range specs {
			c1, c2 := MustParseCombination(s1), MustParseCombination(s2)
			merged, ok := mergeCombinations(c1, c2)
			if !ok {
				continue
			}
			forEachPressed(func(pressed KeySet) {
				want := c1.IsActive(pressed) || c2.IsActive(pressed)
				if got := merged.IsActive(pressed); got != want {
					t.Errorf("merge(%q, %q) = %q: IsActive(%v) = %v, want %v",
						s1, s2, merged, pressed, got, want)
				}
			})
		}
	}
}

func TestSimplifySet(t *testing.T) {
	tests := []struct {
		name  string
		input []Combination
		want  []Combination
	}{
		{
			name: "identical combinations",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight, CapsLock)),
				OfOnKeys(NewKeySet(Shift, AltRight, CapsLock)),
			},
			want: []Combination{OfOnKeys(NewKeySet(Shift, AltRight, CapsLock))},
		},
		{
			name: "single key on",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight, CapsLock)),
				OfOnKeys(NewKeySet(Shift, AltRight)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(CapsLock))},
		},
		{
			name: "parent key on",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight, Control)),
				OfOnKeys(NewKeySet(Shift, AltRight)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(Control))},
		},
		{
			name: "single key off",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight)),
				MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(Command)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(Command))},
		},
		{
			name: "parent key off",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight)),
				MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(Option)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(Option))},
		},
		{
			name: "child key on",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight, ControlLeft)),
				OfOnKeys(NewKeySet(Shift, AltRight)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(ControlLeft))},
		},
		{
			name: "child key off",
			input: []Combination{
				OfOnKeys(NewKeySet(Shift, AltRight)),
				MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(ControlLeft)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(NewKeySet(Shift, AltRight), NewKeySet(ControlLeft))},
		},
		{
			name: "parent generalises child",
			input: []Combination{
				MustOfOnAndDontCareKeys(NewKeySet(Control, ControlLeft), NewKeySet(ControlRight)),
				OfOnKeys(NewKeySet(Control)),
			},
			want: []Combination{OfOnKeys(NewKeySet(Control))},
		},
		{
			name: "parent don't care and child on",
			input: []Combination{
				MustOfOnAndDontCareKeys(0, NewKeySet(Option)),
				OfOnKeys(NewKeySet(OptionRight)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(0, NewKeySet(Option))},
		},
		{
			name: "parent don't care and child don't care",
			input: []Combination{
				MustOfOnAndDontCareKeys(0, NewKeySet(Option)),
				MustOfOnAndDontCareKeys(0, NewKeySet(OptionRight)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(0, NewKeySet(Option))},
		},
		{
			name: "every shift state",
			input: []Combination{
				Base,
				OfOnKeys(NewKeySet(ShiftLeft)),
				OfOnKeys(NewKeySet(ShiftRight)),
				OfOnKeys(NewKeySet(ShiftLeft, ShiftRight)),
			},
			want: []Combination{MustOfOnAndDontCareKeys(0, NewKeySet(Shift))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplifySet(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("simplifySet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimplifySetRetainsUnmergeable(t *testing.T) {
	tests := []struct {
		name string
		a, b Combination
	}{
		{
			name: "different children don't care",
			a:    MustOfOnAndDontCareKeys(0, NewKeySet(ControlRight)),
			b:    MustOfOnAndDontCareKeys(0, NewKeySet(ControlLeft)),
		},
		{
			name: "different children on",
			a:    OfOnKeys(NewKeySet(ControlRight)),
			b:    OfOnKeys(NewKeySet(ControlLeft)),
		},
		{
			name: "unrelated keys",
			a:    OfOnKeys(NewKeySet(ControlRight, Shift)),
			b:    OfOnKeys(NewKeySet(ControlLeft)),
		},
		{
			name: "different groups",
			a:    OfOnKeys(NewKeySet(Shift)),
			b:    OfOnKeys(NewKeySet(CapsLock)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplifySet([]Combination{tt.a, tt.b})
			if len(got) != 2 || !slices.Contains(got, tt.a) || !slices.Contains(got, tt.b) {
				t.Errorf("simplifySet() = %v, want both %v and %v", got, tt.a, tt.b)
			}
		})
	}
}

func TestSimplifySetPreservesMeaning(t *testing.T) {
	inputs := [][]string{
		{"", "shiftL", "shiftR", "shiftL+shiftR"},
		{"shift", "shift+caps", "caps"},
		{"altR+caps?", "ctrl+alt+caps?", "altR+shift"},
		{"cmd", "cmd+opt?", "cmd+optL", "cmd+shift"},
		{"ctrlL", "ctrlR?", "ctrl+shift", "shift"},
	}
	for _, specs := range inputs {
		var combinations []Combination
		for _, s := range specs {
			combinations = append(combinations, MustParseCombination(s))
		}
		simplified := simplifySet(combinations)
		anyActive := func(cs []Combination, pressed KeySet) bool {
			for _, c := range cs {
				if c.IsActive(pressed) {
					return true
				}
			}
			return false
		}
		forEachPressed(func(pressed KeySet) {
			if got, want := anyActive(simplified, pressed), anyActive(combinations, pressed); got != want {
				t.Errorf("%q simplified to %v: active(%v) = %v, want %v", specs, simplified, pressed, got, want)
			}
		})
		if again := simplifySet(simplified); !slices.Equal(again, simplified) {
			t.Errorf("simplifySet not idempotent for %q: %v then %v", specs, simplified, again)
		}
		if !slices.IsSortedFunc(simplified, Combination.Compare) {
			t.Errorf("simplifySet(%q) = %v, not sorted", specs, simplified)
		}
	}
}
