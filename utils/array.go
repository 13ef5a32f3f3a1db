package utils

// Tail returns the last max entries of lines, or all of them when there are
// fewer. The result shares storage with lines.
func Tail(lines []string, max int) []string {
	if max <= 0 {
		return []string{}
	}
	if len(lines) <= max {
		return lines
	}
	return lines[len(lines)-max:]
}
