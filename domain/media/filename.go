package media

import "strings"

// reservedFilenameChars cannot appear in filenames on common filesystems
const reservedFilenameChars = `<>:"/\|?*`

// SanitizeFilename replaces each reserved character in name with an underscore.
// Every other character, including whitespace, is kept as is.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}
