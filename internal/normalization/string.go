package normalization

import (
  "strings"
)

func ParseInputString(input string) string {
  normalized := strings.ToLower(strings.TrimSpace(input))
  return normalized
}

// ParseDisplayString trims but preserves case, for titles and names
// that are shown back to the user as typed.
func ParseDisplayString(input string) string {
  return strings.TrimSpace(input)
}
