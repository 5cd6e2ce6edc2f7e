package flow

import "strings"

// FormatPhone reformats raw keystroke input into the Brazilian phone mask,
// progressively: "119999" → "(11) 9999",
// "11999998888" → "(11) 99999-8888". Digits past the 11th are dropped.
func FormatPhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()

	switch {
	case len(n) <= 2:
		return n
	case len(n) <= 7:
		return "(" + n[:2] + ") " + n[2:]
	case len(n) <= 11:
		return "(" + n[:2] + ") " + n[2:7] + "-" + n[7:]
	default:
		return "(" + n[:2] + ") " + n[2:7] + "-" + n[7:11]
	}
}
