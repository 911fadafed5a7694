package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"plain film", "Some Movie (1999)", "Some Movie (1999)"},
		{"episode", "Show_S01E02", "Show_S01E02"},
		{"slashes", "AC/DC: Live", "AC-DC- Live"},
		{"drops quotes", `The "Best" <Cut>?`, "The Best Cut"},
		{"control runes", "Title\x00\x07 Here", "Title Here"},
		{"trailing dots", "Dr. No...", "Dr. No"},
		{"decomposed accent", "Ame\u0301lie", "Am\u00e9lie"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  a  ", "a"},
		{"Jane\t\tDoe\nJr.", "Jane Doe Jr."},
	}
	for _, tt := range tests {
		if got := CollapseSpace(tt.in); got != tt.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
