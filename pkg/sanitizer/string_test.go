package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Beach House  ",
			want:  "Beach House",
		},
		{
			name:  "multiple spaces between words",
			input: "Beach    House",
			want:  "Beach House",
		},
		{
			name:  "tabs and newlines",
			input: "Beach\t\nHouse",
			want:  "Beach House",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve accents",
			input: " Chácara São João ",
			want:  "Chácara São João",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"with hyphen", "01310-100", "01310100"},
		{"with spaces", " 01310 100 ", "01310100"},
		{"digits only", "01310100", "01310100"},
		{"empty", "", ""},
		{"letters dropped", "CEP 01310-100", "01310100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePostalCode(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePostalCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
