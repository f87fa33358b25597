// Package windows reads the source files of the Microsoft Keyboard Layout
// Creator (.klc).
//
// A .klc file is UTF-16 text divided into sections, each headed by a
// keyword in capitals (SHIFTSTATE, LAYOUT, LIGATURE, DEADKEY, KEYNAME,
// DESCRIPTIONS, ...). Comments start with "//".
//
// SHIFTSTATE numbers are bit masks of Shft (1), Ctrl (2) and Alt (4). A
// state holding Ctrl or Alt leaves caps lock don't-care, and Ctrl+Alt is
// also registered as the equivalent right Alt (AltGr) combination.
//
// The Cap column of a LAYOUT line decides the caps lock outputs:
//
//	0      caps behaves like no caps; caps+shift like shift
//	1 4 5  caps gives the shifted output; caps+shift the base output
//	SGCap  the following line lists the caps outputs explicitly
package windows
