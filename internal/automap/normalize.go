package automap

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Normalize reduces a header, label or path to a comparison key:
// case-folded, diacritics removed, only letters and digits kept.
//
//	"Hardware Vendor"   -> "hardwarevendor"
//	"hardware.vendor"   -> "hardwarevendor"
//	"Seriennummer (Ü)"  -> "seriennummeru"
func Normalize(s string) string {
	s = norm.NFKD.String(folder.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// lastSegment returns the final dot segment of a path, stripped of any bracket index.
func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.IndexByte(path, '['); i >= 0 {
		path = path[:i]
	}
	return path
}
