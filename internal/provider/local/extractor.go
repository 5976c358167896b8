package local

import "unicode"

// Ellipsis marks a truncated excerpt.
const Ellipsis = "…"

// Truncate cuts text to at most maxChars characters, counting the
// appended ellipsis. Cuts land on a word boundary, never mid-word;
// when no boundary exists inside the limit the single oversized token
// is cut hard. Text already within the limit comes back unchanged and
// unflagged.
func Truncate(text string, maxChars int) (string, bool) {
	if maxChars <= 0 {
		return "", len(text) > 0
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}

	// Reserve one character for the ellipsis.
	limit := maxChars - 1
	if limit == 0 {
		return Ellipsis, true
	}

	cut := limit
	for i := limit; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	if cut == 0 {
		// One token longer than the whole limit.
		cut = limit
	}

	out := runes[:cut]
	for len(out) > 0 && unicode.IsSpace(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return string(out) + Ellipsis, true
}
