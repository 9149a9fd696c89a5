package formx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"swedish mobile with spaces", "+46 70 123 45 67", true},
		{"digits only", "0701234567", true},
		{"dashes and parentheses", "(070) 123-45-67", true},
		{"surrounding whitespace trimmed", "  0701234567  ", true},
		{"letters", "abc", false},
		{"too short", "070123", false},
		{"long enough but malformed", "070123456x", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}
