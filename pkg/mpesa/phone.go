package mpesa

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPhone is returned when a phone number cannot be normalized to a
// valid Kenyan MSISDN. Callers should treat it as a client error.
var ErrInvalidPhone = errors.New("invalid phone number format, must be a valid Kenyan number")

var (
	intlRe  = regexp.MustCompile(`^254\d{9}$`)
	localRe = regexp.MustCompile(`^0\d{9}$`)
	bareRe  = regexp.MustCompile(`^[17]\d{8}$`)
)

// NormalizePhone canonicalizes a Kenyan phone number into the 254XXXXXXXXX
// form the Daraja API requires. Accepted inputs (after stripping non-digits):
// 254712345678, 0712345678 and 712345678 (or 1XXXXXXXX).
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case intlRe.MatchString(digits):
		return digits, nil
	case localRe.MatchString(digits):
		return "254" + digits[1:], nil
	case bareRe.MatchString(digits):
		return "254" + digits, nil
	}
	return "", ErrInvalidPhone
}
