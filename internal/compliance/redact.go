package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// UK numbers: 07700 900982, 01632 960 001, +44 (0)114 496 0000.
	phoneRe = regexp.MustCompile(`(?:\+44\s?(?:\(0\)\s?)?|0)\d{2,4}[\s-]?\d{3}[\s-]?\d{3,4}`)
)

// Fingerprint identifies a contact value in audit records without storing it.
// Values are normalised so "07700 900 982" and "07700900982" match.
func Fingerprint(value string) string {
	normalised := strings.ToLower(strings.Join(strings.Fields(value), ""))
	h := sha256.Sum256([]byte(normalised))
	return hex.EncodeToString(h[:])
}

// Redact replaces email addresses with [EMAIL] and phone numbers with [PHONE].
func Redact(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	return phoneRe.ReplaceAllString(text, "[PHONE]")
}
