// Package contact validates the contact column of registry rows: an email
// address or an ORCID iD.
package contact

import (
	"net/mail"
	"strings"
)

const orcidPrefix = "https://orcid.org/"

// Validator accepts email addresses and ORCID iDs.
type Validator struct{}

// New returns a Validator.
func New() *Validator { return &Validator{} }

// Validate reports whether raw is a usable contact.
func (v *Validator) Validate(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if _, ok := ORCID(raw); ok {
		return true
	}
	_, ok := Email(raw)
	return ok
}

// Normalize returns the canonical form of raw: a bare lower-case address for
// email, the https://orcid.org/ URI for an ORCID iD. Invalid input is
// returned trimmed.
func (v *Validator) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if id, ok := ORCID(raw); ok {
		return orcidPrefix + id
	}
	if addr, ok := Email(raw); ok {
		return addr
	}
	return raw
}

// Email parses raw as an email address, with or without a display name or
// mailto: scheme.
func Email(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "mailto:")
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", false
	}
	at := strings.LastIndexByte(addr.Address, '@')
	if at <= 0 || !strings.Contains(addr.Address[at:], ".") {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}

// ORCID parses raw as an ORCID iD, bare or as an orcid.org URI, and checks
// its ISO 7064 11,2 check digit. It returns the bare iD.
func ORCID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	for _, prefix := range []string{orcidPrefix, "http://orcid.org/", "orcid.org/"} {
		if strings.HasPrefix(strings.ToLower(id), prefix) {
			id = id[len(prefix):]
			break
		}
	}
	id = strings.ToUpper(id)
	if len(id) != 19 {
		return "", false
	}
	digits := make([]byte, 0, 16)
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case i == 4 || i == 9 || i == 14:
			if c != '-' {
				return "", false
			}
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == 'X' && i == len(id)-1:
			digits = append(digits, c)
		default:
			return "", false
		}
	}
	if checkDigit(digits[:15]) != digits[15] {
		return "", false
	}
	return id, true
}

func checkDigit(base []byte) byte {
	total := 0
	for _, c := range base {
		total = (total + int(c-'0')) * 2
	}
	result := (12 - total%11) % 11
	if result == 10 {
		return 'X'
	}
	return byte('0' + result)
}
