package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"user123@example.co.uk", true},
		{"a@b.co", true},

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},

		// Invalid emails - bad format
		{".user@example.com", false},      // leading dot in local
		{"user..name@example.com", false}, // consecutive dots

		// Invalid emails - display name format (should be rejected)
		{"User Name <user@example.com>", false},

		// Invalid emails - other malformed
		{"user @example.com", false}, // space in local
		{"user@exam ple.com", false}, // space in domain
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidNationalID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"12345678901", true},
		{"00000000000", true},
		{"  12345678901  ", true}, // trimmed

		{"", false},
		{"   ", false},
		{"1234567890", false},     // too short
		{"123456789012", false},   // too long
		{"1234567890a", false},    // non-digit
		{"123 456 789 01", false}, // interior spaces (caller normalizes first)
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidNationalID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidNationalID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"secret", true},
		{"longer-password", true},
		{"123456", true},

		{"", false},
		{"12345", false},
		{"abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := IsValidPassword(tt.password)
			if got != tt.want {
				t.Errorf("IsValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true}, // uppercase hex is valid
		{"  507f1f77bcf86cd799439011  ", true},

		{"", false},
		{"507f1f77bcf86cd79943901", false},   // too short
		{"507f1f77bcf86cd7994390111", false}, // too long
		{"507f1f77bcf86cd79943901g", false},  // invalid hex char
		{"not-a-valid-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsValidTimeHHMM(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"00:00", true},
		{"09:30", true},
		{"23:59", true},
		{"  14:00  ", true},

		{"", false},
		{"24:00", false},
		{"12:60", false},
		{"9:30", false}, // must be zero-padded
		{"12.30", false},
		{"noon", false},
	}

	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			got := IsValidTimeHHMM(tt.val)
			if got != tt.want {
				t.Errorf("IsValidTimeHHMM(%q) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.com", true},
		{"https://example.com/path?query=1", true},
		{"http://localhost:8080", true},
		{"  https://example.com  ", true},

		{"", false},
		{"ftp://example.com", false},
		{"mailto:user@example.com", false},
		{"example.com", false},
		{"//example.com", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsValidHTTPURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
