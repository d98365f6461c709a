package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"already clean", "Meeting Room A", "Meeting Room A"},
		{"surrounding whitespace", "  Projector  ", "Projector"},
		{"internal runs", "Meeting   Room\t\tA", "Meeting Room A"},
		{"newlines", "Room\nB", "Room B"},
		{"tabs and newlines mixed", " \tRoom \n 12 ", "Room 12"},
		{"unicode preserved", "Büro Süd", "Büro Süd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  alice@example.com ", "alice@example.com"},
		{"bob@example.com", "bob@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
