package common

import "strings"

// UnknownStr is the name printed for out-of-range enum values.
const UnknownStr = "unknown"

// UpperSnake joins parts with '_' and upper-cases the result.
func UpperSnake(parts ...string) string {
	return strings.ToUpper(strings.Join(parts, "_"))
}
