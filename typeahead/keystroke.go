package typeahead

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// isCharacter reports whether key is exactly one user-perceived character
// that can be typed into a buffer. Key names ("Shift", "ctrl+a"), empty
// strings and control characters are not.
func isCharacter(key string) bool {
	if key == "" || uniseg.GraphemeClusterCount(key) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r != utf8.RuneError && !unicode.IsControl(r)
}
