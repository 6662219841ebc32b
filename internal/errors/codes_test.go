package errors

import (
	"strings"
	"testing"
)

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		family string
	}{
		{"PAR001", PAR001, "PAR"},
		{"PAR005", PAR005, "PAR"},
		{"NAM001", NAM001, "NAM"},
		{"NAM004", NAM004, "NAM"},
		{"TYP002", TYP002, "TYP"},
		{"TYP007", TYP007, "TYP"},
		{"OWN001", OWN001, "OWN"},
		{"OWN004", OWN004, "OWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.code, tt.family) {
				t.Errorf("code %s does not carry family prefix %s", tt.code, tt.family)
			}
			if len(tt.code) != len(tt.family)+3 {
				t.Errorf("code %s does not follow the XXX### shape", tt.code)
			}
		})
	}
}
