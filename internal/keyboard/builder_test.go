package keyboard

import (
	"errors"
	"slices"
	"testing"

	"golang.org/x/text/language"

	"github.com/cldrtools/keyboard/internal/keyboard/modifier"
)

var (
	testIDUS = NewID(language.MustParse("en-US"), PlatformOSX)
	testIDCA = NewID(language.MustParse("en-CA"), PlatformOSX)
)

func newTestBuilder() *Builder {
	b := NewBuilder()
	b.AddName("U.S.")
	b.AddKeyboardIDs(testIDUS)
	return b
}

func TestBuilderConflictingMapping(t *testing.T) {
	b := newTestBuilder()
	pos := MustParsePosition("C01")
	if err := b.AddCharacterMap(modifier.Base, NewCharacterMap(pos, "a")); err != nil {
		t.Fatalf("AddCharacterMap error = %v", err)
	}
	if err := b.AddCharacterMap(modifier.Base, NewCharacterMap(pos, "a")); err != nil {
		t.Errorf("adding identical mapping error = %v, want nil", err)
	}
	err := b.AddCharacterMap(modifier.Base, NewCharacterMap(pos, "q"))
	if !errors.Is(err, ErrConflictingMapping) {
		t.Errorf("adding conflicting mapping error = %v, want ErrConflictingMapping", err)
	}
}

func TestBuilderConflictingTransform(t *testing.T) {
	b := newTestBuilder()
	if err := b.AddTransform("`a", "à"); err != nil {
		t.Fatalf("AddTransform error = %v", err)
	}
	if err := b.AddTransform("`a", "à"); err != nil {
		t.Errorf("adding identical transform error = %v", err)
	}
	if err := b.AddTransform("`a", "á"); !errors.Is(err, ErrConflictingTransform) {
		t.Errorf("adding conflicting transform error = %v, want ErrConflictingTransform", err)
	}
	if got := b.TransformSequences(); !slices.Equal(got, []string{"`a"}) {
		t.Errorf("TransformSequences() = %q", got)
	}
	if !b.StartsTransform("`") || b.StartsTransform("a") {
		t.Error("StartsTransform mismatch")
	}
}

func TestBuilderRequiresIDAndName(t *testing.T) {
	b := NewBuilder()
	b.AddName("U.S.")
	if _, err := b.Build(); !errors.Is(err, ErrNoKeyboardID) {
		t.Errorf("Build() without ids error = %v, want ErrNoKeyboardID", err)
	}

	b = NewBuilder()
	b.AddKeyboardIDs(testIDUS)
	if _, err := b.Build(); !errors.Is(err, ErrNoName) {
		t.Errorf("Build() without names error = %v, want ErrNoName", err)
	}
}

func TestBuilderMergesIdenticalKeyMaps(t *testing.T) {
	b := newTestBuilder()
	b.AddKeyboardIDs(testIDCA, testIDUS)
	a, s := MustParsePosition("C01"), MustParsePosition("C02")

	shift := modifier.MustParseCombination("shift")
	caps := modifier.MustParseCombination("caps")
	mustAdd := func(c modifier.Combination, cm CharacterMap) {
		t.Helper()
		if err := b.AddCharacterMap(c, cm); err != nil {
			t.Fatalf("AddCharacterMap(%s, %v) error = %v", c, cm, err)
		}
	}
	mustAdd(modifier.Base, NewCharacterMap(a, "a"))
	mustAdd(modifier.Base, NewCharacterMap(s, "s"))
	mustAdd(shift, NewCharacterMap(s, "S"))
	mustAdd(shift, NewCharacterMap(a, "A"))
	mustAdd(caps, NewCharacterMap(a, "A"))
	mustAdd(caps, NewCharacterMap(s, "S"))
	if err := b.AddTransform("^a", "â"); err != nil {
		t.Fatal(err)
	}

	keyboards, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(keyboards) != 2 {
		t.Fatalf("len(Build()) = %d, want 2", len(keyboards))
	}
	if got := keyboards[0].ID().String(); got != "en-CA-t-k0-osx" {
		t.Errorf("first keyboard id = %s, want en-CA-t-k0-osx", got)
	}

	kb := keyboards[1]
	maps := kb.KeyMaps()
	if len(maps) != 2 {
		t.Fatalf("len(KeyMaps()) = %d, want 2", len(maps))
	}
	if got := maps[0].Modifiers().String(); got != "" {
		t.Errorf("first key map modifiers = %q, want base", got)
	}
	if got := maps[1].Modifiers().String(); got != "shift caps" {
		t.Errorf("second key map modifiers = %q, want %q", got, "shift caps")
	}
	cms := maps[1].CharacterMaps()
	if len(cms) != 2 || cms[0].Position != a || cms[0].Output != "A" || cms[1].Output != "S" {
		t.Errorf("shifted character maps = %v", cms)
	}
	if got := kb.Transforms(); len(got) != 1 || got[0] != (Transform{Sequence: "^a", Output: "â"}) {
		t.Errorf("Transforms() = %v", got)
	}
	if got := kb.Names(); !slices.Equal(got, []string{"U.S."}) {
		t.Errorf("Names() = %v", got)
	}

	base, ok := kb.BaseMap()
	if !ok {
		t.Fatal("BaseMap() not found")
	}
	if cm, ok := base.Lookup(s); !ok || cm.Output != "s" {
		t.Errorf("base Lookup(C02) = %v, %v", cm, ok)
	}
	if cm, ok := kb.Output(a, modifier.NewKeySet(modifier.ShiftRight)); !ok || cm.Output != "A" {
		t.Errorf("Output(C01, shiftR) = %v, %v, want A", cm, ok)
	}
	if _, ok := kb.Output(a, modifier.NewKeySet(modifier.ShiftLeft, modifier.CapsLock)); ok {
		t.Error("Output(C01, shiftL+caps) found, want none")
	}
}

func TestCharacterMapEqual(t *testing.T) {
	pos := MustParsePosition("E01")
	a := NewCharacterMap(pos, "1").WithLongPress("¹", "½")
	b := NewCharacterMap(pos, "1").WithLongPress("¹", "½")
	if !a.Equal(b) {
		t.Error("identical character maps not equal")
	}
	if a.Equal(b.MarkTransformNo()) {
		t.Error("transform flag ignored by Equal")
	}
	if a.Equal(NewCharacterMap(pos, "1")) {
		t.Error("long press ignored by Equal")
	}
}
