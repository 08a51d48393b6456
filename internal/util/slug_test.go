package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "FRUITS", "fruits"},
		{"spaces to dashes", "olive oil", "olive-oil"},
		{"underscores to dashes", "olive_oil", "olive-oil"},
		{"already normalized", "olive-oil", "olive-oil"},

		// Whitespace handling
		{"trim whitespace", "  fruits  ", "fruits"},
		{"multiple spaces", "olive   oil", "olive-oil"},
		{"tabs and spaces", "olive\t oil", "olive-oil"},

		// Special characters
		{"ampersand removal", "Fruits & Nuts", "fruits-nuts"},
		{"slash to dash", "pasta/rice", "pasta-rice"},
		{"apostrophe removal", "baker's yeast", "bakers-yeast"},

		// Dash handling
		{"multiple dashes", "olive--oil", "olive-oil"},
		{"leading dashes", "--fruits", "fruits"},
		{"trailing dashes", "fruits--", "fruits"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "cola 330ml", "cola-330ml"},

		// Real-world examples
		{"dairy products", "Dairy Products", "dairy-products"},
		{"frozen vegetables", "Frozen_Vegetables", "frozen-vegetables"},
		{"canned fish", "Canned Fish (Tins)", "canned-fish-tins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
