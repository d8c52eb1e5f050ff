// Package inputval validates individual form fields.
//
// These helpers answer "is this value well-formed"; business rules (does the
// email already exist, is the member approved) live in the stores and
// policies.
package inputval

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

var (
	nationalIDRe = regexp.MustCompile(`^[0-9]{11}$`)
	objectIDRe   = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	timeHHMMRe   = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// IsValidEmail reports whether s is a well-formed email address.
// Display-name forms ("Name <a@b>") are rejected; only the bare address is
// accepted.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>"; we only want the bare address.
	return addr.Address == s
}

// IsValidNationalID reports whether s is an 11-digit national identity
// number. Only the format is checked, not the checksum.
func IsValidNationalID(s string) bool {
	return nationalIDRe.MatchString(strings.TrimSpace(s))
}

// IsValidPassword reports whether s meets the minimum length requirement.
func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLength
}

// IsValidObjectID reports whether s is a 24-character hex MongoDB ObjectID.
func IsValidObjectID(s string) bool {
	return objectIDRe.MatchString(strings.TrimSpace(s))
}

// IsValidTimeHHMM reports whether s is a 24-hour "HH:MM" clock time.
func IsValidTimeHHMM(s string) bool {
	return timeHHMMRe.MatchString(strings.TrimSpace(s))
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
