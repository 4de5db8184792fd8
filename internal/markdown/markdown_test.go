package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{
			name:     "plain paragraph",
			input:    "A lighthouse at dusk",
			contains: "<p>A lighthouse at dusk</p>",
		},
		{
			name:     "bold",
			input:    "**Subject:** a lighthouse",
			contains: "<strong>Subject:</strong>",
		},
		{
			name:     "list",
			input:    "- fog\n- waves",
			contains: "<li>fog</li>",
		},
		{
			name:     "raw html skipped",
			input:    "<script>alert(1)</script>\n\nA lighthouse",
			contains: "A lighthouse",
			excludes: "<script>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHTML(tt.input)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
			}
			if tt.excludes != "" && strings.Contains(got, tt.excludes) {
				t.Errorf("ToHTML(%q) = %q, must not contain %q", tt.input, got, tt.excludes)
			}
		})
	}
}
