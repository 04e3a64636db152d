package vo

import (
	"strings"

	"golang.org/x/text/language"
)

// ValidLanguageCode reports whether code is a recognized two-letter language
// code. Subtitle files are keyed by these codes, so anything else is rejected
// before storage is touched.
func ValidLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	if code != strings.ToLower(code) {
		return false
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return false
	}
	// ParseBase canonicalizes; a code that round-trips is a real ISO 639-1 tag
	// rather than a well-formed-but-unknown one.
	return base.String() == code
}
