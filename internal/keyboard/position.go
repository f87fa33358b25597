package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a key location in the ISO layout grid. Rows run from 'E' (the
// digit row) down to 'A' (the space bar row); columns count from the left.
//
// The zero Position is invalid.
type Position uint8

type positionInfo struct {
	row    byte
	column int
}

// positionRows lists the positions a layout may map, in layout order.
var positionRows = []struct {
	row         byte
	first, last int
}{
	{'E', 0, 13},
	{'D', 1, 13},
	{'C', 1, 12},
	{'B', 0, 11},
	{'A', 3, 3},
}

var (
	positionTable  = buildPositionTable()
	positionByName = buildPositionByName()
)

func buildPositionTable() []positionInfo {
	table := []positionInfo{{}}
	for _, r := range positionRows {
		for c := r.first; c <= r.last; c++ {
			table = append(table, positionInfo{row: r.row, column: c})
		}
	}
	return table
}

func buildPositionByName() map[string]Position {
	m := make(map[string]Position, len(positionTable))
	for i := 1; i < len(positionTable); i++ {
		m[Position(i).String()] = Position(i)
	}
	return m
}

// Positions returns every valid position in layout order.
func Positions() []Position {
	out := make([]Position, 0, len(positionTable)-1)
	for i := 1; i < len(positionTable); i++ {
		out = append(out, Position(i))
	}
	return out
}

// Valid returns true if p is a known position.
func (p Position) Valid() bool {
	return p > 0 && int(p) < len(positionTable)
}

// Row returns the row letter, 'A' through 'E'.
func (p Position) Row() byte {
	if !p.Valid() {
		return 0
	}
	return positionTable[p].row
}

// Column returns the column number within the row.
func (p Position) Column() int {
	if !p.Valid() {
		return -1
	}
	return positionTable[p].column
}

// String returns the position name, e.g. "E01".
func (p Position) String() string {
	if !p.Valid() {
		return "Position(" + strconv.Itoa(int(p)) + ")"
	}
	info := positionTable[p]
	return fmt.Sprintf("%c%02d", info.row, info.column)
}

// ParsePosition parses a position name such as "C01".
func ParsePosition(name string) (Position, error) {
	if p, ok := positionByName[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPosition, name)
}

// MustParsePosition is like ParsePosition but panics on error.
func MustParsePosition(name string) Position {
	p, err := ParsePosition(name)
	if err != nil {
		panic(err)
	}
	return p
}
