package osx

import (
	_ "embed"

	"github.com/cldrtools/keyboard/internal/keyboard"
)

var (
	//go:embed data/osx-keycodes.csv
	keycodesCSV string

	//go:embed data/osx-locales.csv
	localesCSV string
)

// Embedded hardware and layout name tables.
var (
	KeycodeMap    = keyboard.MustReadKeycodeMap(keycodesCSV)
	KeyboardIDMap = keyboard.MustReadKeyboardIDMap(localesCSV, keyboard.PlatformOSX)
)
