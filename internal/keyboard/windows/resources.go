package windows

import (
	_ "embed"

	"github.com/cldrtools/keyboard/internal/keyboard"
)

var (
	//go:embed data/windows-keycodes.csv
	keycodesCSV string

	//go:embed data/windows-locales.csv
	localesCSV string
)

// Embedded hardware and layout name tables.
var (
	KeycodeMap    = keyboard.MustReadKeycodeMap(keycodesCSV)
	KeyboardIDMap = keyboard.MustReadKeyboardIDMap(localesCSV, keyboard.PlatformWindows)
)
