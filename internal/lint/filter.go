package lint

import "strings"

// FilterWarnings removes every line that mentions "warning" in any case,
// keeping the remaining lines in their original order.
func FilterWarnings(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "warning") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
