package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := map[string]string{
		"call 07700 900982 after lunch":  "call [PHONE] after lunch",
		"landline 01632 960 001":         "landline [PHONE]",
		"mobile +44 (0)114 496 0000":     "mobile [PHONE]",
		"email jo.smith@justice.example": "email [EMAIL]",
		"cell 3-1-014, wing B":           "cell 3-1-014, wing B",
	}
	for in, want := range tests {
		assert.Equal(t, want, Redact(in), in)
	}
}

func TestFingerprintNormalisesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, Fingerprint("07700 900 982"), Fingerprint("07700900982"))
	assert.Equal(t, Fingerprint("Jo@Example.com"), Fingerprint("jo@example.com"))
	assert.NotEqual(t, Fingerprint("07700 900 982"), Fingerprint("07700 900 983"))
	assert.Len(t, Fingerprint("x"), 64)
}
