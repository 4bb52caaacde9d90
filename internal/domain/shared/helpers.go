package shared

import (
	"strings"
	"unicode"
)

func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "unique constraint")
}

// NormalizePlate strips separators and upper-cases latin letters so that
// plates read by different cameras compare equal.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(plate) {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '|' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
