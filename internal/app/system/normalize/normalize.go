// Package normalize provides canonicalization helpers for user input.
//
// Handlers call these before validation and storage so the same value is
// always compared and persisted in one canonical form (trimmed, and
// lowercased where the field is case-insensitive).
package normalize

import "strings"

// Email trims whitespace and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace from a personal or group name. Case is preserved;
// case-insensitive lookups use a separate folded field.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims and lowercases a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Visibility trims and lowercases a visibility value.
func Visibility(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NationalID trims whitespace and strips interior spaces from a national
// identity number so "123 456 789 01" and "12345678901" compare equal.
func NationalID(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}

// QueryParam trims whitespace from a search or filter parameter.
// Case is preserved; callers fold if they need insensitive matching.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
