package repository

import "strings"

const invalidNameChars = `<>:"/\|?*`

// SanitizeName turns a person name into a safe storage key: characters that are invalid in
// file names become "_", surrounding spaces and dots are trimmed, and inner spaces become "_".
func SanitizeName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidNameChars, r) {
			return '_'
		}
		return r
	}, name)
	sanitized = strings.Trim(sanitized, " .")
	return strings.ReplaceAll(sanitized, " ", "_")
}
