package banking

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// PINLength is the digit count the mock credential store issues
const PINLength = 4

var ErrInvalidPIN = goerr.New("pin is not a valid digit string")

var digitWords = map[string]string{
	"zero":  "0",
	"oh":    "0",
	"o":     "0",
	"one":   "1",
	"two":   "2",
	"three": "3",
	"four":  "4",
	"five":  "5",
	"six":   "6",
	"seven": "7",
	"eight": "8",
	"nine":  "9",
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '-', '.', ',', '_', '/':
		return true
	}
	return false
}

// NormalizeIdentifier canonicalizes a spoken-form customer identifier by
// stripping separators between alphanumeric runs. Case is preserved for
// display; matching lower-cases separately. Idempotent.
func NormalizeIdentifier(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if isSeparator(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizePIN canonicalizes a spoken-form PIN into a fixed-length digit
// string. Digit words ("one", "zero", "oh") map to digits and separators are
// dropped. Anything else, or a wrong final length, fails validation.
func NormalizePIN(raw string) (string, error) {
	var b strings.Builder
	b.Grow(PINLength)

	for _, field := range strings.FieldsFunc(strings.ToLower(raw), isSeparator) {
		if digit, ok := digitWords[field]; ok {
			b.WriteString(digit)
			continue
		}
		for _, r := range field {
			if r < '0' || r > '9' {
				return "", goerr.Wrap(ErrInvalidPIN, "non-digit content in pin")
			}
			b.WriteRune(r)
		}
	}

	pin := b.String()
	if len(pin) != PINLength {
		return "", goerr.Wrap(ErrInvalidPIN, "unexpected pin length", goerr.V("length", len(pin)))
	}
	return pin, nil
}
