package sniper

import "strings"

// The provider's offering codes are the user's requested tokens plus
// model-specific suffixes (ram64 -> ram64-ecc-2400), so exact match
// would systematically fail. Prefix match is the minimal heuristic that
// survives the provider's naming scheme.

// MatchOffering returns the requested value an offering code satisfies,
// if any.
func MatchOffering(code string, wanted []string) (string, bool) {
	for _, value := range wanted {
		if strings.HasPrefix(code, value) {
			return value, true
		}
	}
	return "", false
}

// UnmetValues returns the requested values no attached offering code
// satisfies. Unmet values are reported, never fatal: the base item
// purchase proceeds regardless.
func UnmetValues(wanted []string, attached []string) []string {
	var unmet []string
	for _, value := range wanted {
		satisfied := false
		for _, code := range attached {
			if strings.HasPrefix(code, value) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			unmet = append(unmet, value)
		}
	}
	return unmet
}
