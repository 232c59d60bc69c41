// Package langhint provides a coarse script hint for incoming chat text.
package langhint

import (
	"unicode"
)

// Hint is a coarse script classification of a message.
type Hint string

const (
	// Arabic means the text is predominantly Arabic script
	Arabic Hint = "ar"
	// Latin means the text is predominantly Latin script
	Latin Hint = "latin"
	// Mixed means Arabic and Latin letters interleave without a clear majority
	Mixed Hint = "mixed"
	// Unknown means the text carried no Arabic or Latin letters at all
	Unknown Hint = ""
)

// Detect returns a script hint from the Arabic share of discriminating letters.
// Above 70 percent yields Arabic, below 30 percent yields Latin, anything in
// between yields Mixed. Digits, punctuation and emoji never count; text with
// neither Arabic nor Latin letters yields Unknown
func Detect(s string) Hint {
	var arabic, latin int

	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		switch {
		case unicode.In(r, unicode.Arabic):
			arabic++
		case unicode.In(r, unicode.Latin):
			latin++
		}
	}

	total := arabic + latin
	if total == 0 {
		return Unknown
	}

	ratio := float64(arabic) / float64(total)
	switch {
	case ratio > 0.7:
		return Arabic
	case ratio < 0.3:
		return Latin
	default:
		return Mixed
	}
}
