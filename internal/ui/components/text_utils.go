package components

import "strings"

// TruncateText truncates text to a maximum length with ellipsis
func TruncateText(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen < 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// TruncateMiddle truncates text in the middle with ellipsis. Useful for
// paths where both the root and the leaf matter.
func TruncateMiddle(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen < 3 {
		return string(r[:maxLen])
	}

	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}

// PadRight pads text to the right with spaces
func PadRight(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return text + strings.Repeat(" ", width-n)
}
