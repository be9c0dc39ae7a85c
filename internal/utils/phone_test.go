package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"9876543210":      "9876543210",
		"6000000000":      "6000000000",
		"+919876543210":   "9876543210",
		"91 98765 43210":  "9876543210",
		"(987) 654-3210":  "9876543210",
		" 9876543210 ":    "9876543210",
		"+91-98765-43210": "9876543210",
	}
	for input, want := range valid {
		got, err := NormalizePhone(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	invalid := []string{
		"",
		"12345",
		"98765432100",
		"1234567890",  // first digit outside 6-9
		"5876543210",  // first digit outside 6-9
		"98765abcde",  // letters
		"9876543210x", // trailing junk
		"929876543210",
	}
	for _, input := range invalid {
		_, err := NormalizePhone(input)
		assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", input)
	}
}
