package mermaid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportHTML(t *testing.T) {
	source := "flowchart TD\n    A --> B"
	out := ExportHTML(source, "Order <Flow>")

	assert.Contains(t, out, CDNURL())
	assert.Contains(t, out, Version)
	assert.Contains(t, out, source)
	// Titles are escaped, the diagram source is not.
	assert.Contains(t, out, "Order &lt;Flow&gt;")
	assert.NotContains(t, out, "<Flow>")
	assert.Contains(t, out, "mermaid.initialize")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Order Flow", "mmd", "Order_Flow.mmd"},
		{"a/b\\c", "html", "a_b_c.html"},
		{"  ", "mmd", "diagram.mmd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.title, tt.ext))
	}
}
