package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
// Colons are kept: final video names use them as separators.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
