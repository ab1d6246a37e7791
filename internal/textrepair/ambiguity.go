package textrepair

import "unicode"

// toDigit resolves letter-for-digit OCR confusions when a neighbor is a digit.
var toDigit = map[rune]rune{
	'O': '0', 'o': '0',
	'I': '1', 'l': '1', 'i': '1', '|': '1',
	'S': '5', 's': '5',
	'Z': '2', 'z': '2',
	'B': '8', 'b': '8',
	'G': '6', 'g': '6',
	'T': '7', 't': '7',
}

// toAlpha is the inverse table, applied to digits that sit isolated between
// punctuation or whitespace, where a lone letter is the likelier reading.
var toAlpha = map[rune]rune{
	'0': 'O',
	'1': 'I',
	'5': 'S',
	'8': 'B',
	'6': 'G',
	'7': 'T',
}

// mapAmbiguous resolves visually ambiguous characters from local context.
// The same glyph maps differently depending on its neighbors: an O between
// digits becomes 0, a digit alone between punctuation becomes a letter.
// Neighbor tests run against the input, so mapping order cannot cascade.
func mapAmbiguous(text string) string {
	runes := []rune(text)
	out := make([]rune, len(runes))

	isDigit := func(i int) bool {
		return i >= 0 && i < len(runes) && unicode.IsDigit(runes[i])
	}
	isAlnum := func(i int) bool {
		return i >= 0 && i < len(runes) &&
			(unicode.IsDigit(runes[i]) || unicode.IsLetter(runes[i]))
	}

	for i, c := range runes {
		switch {
		case isDigit(i-1) || isDigit(i+1):
			if mapped, ok := toDigit[c]; ok {
				out[i] = mapped
				continue
			}
		case !isAlnum(i-1) && !isAlnum(i+1):
			if mapped, ok := toAlpha[c]; ok {
				out[i] = mapped
				continue
			}
		}
		out[i] = c
	}
	return string(out)
}
