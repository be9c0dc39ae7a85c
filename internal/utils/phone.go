package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number fails normalization.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone strips separators and an optional country prefix and requires
// exactly 10 digits with a mobile first digit (6-9).
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
			// separator, skip
		default:
			return "", ErrInvalidPhone
		}
	}

	phone := digits.String()
	if len(phone) == 12 && strings.HasPrefix(phone, "91") {
		phone = phone[2:]
	}

	if len(phone) != 10 {
		return "", ErrInvalidPhone
	}

	if phone[0] < '6' || phone[0] > '9' {
		return "", ErrInvalidPhone
	}

	return phone, nil
}
