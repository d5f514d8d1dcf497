package mermaid

import (
	"fmt"
	"html"
	"strings"
)

// ExportHTML embeds the diagram source into a minimal standalone HTML page
// that loads the rendering library pinned to Version from the CDN.
func ExportHTML(source, title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <script src="%s"></script>
    <style>
        body { font-family: Arial, sans-serif; max-width: 1200px; margin: 0 auto; padding: 20px; }
        .mermaid { background-color: #fefefe; border: 1px solid #e0e0e0; border-radius: 5px; padding: 20px; }
    </style>
</head>
<body>
    <h1>%s</h1>
    <div class="mermaid">
%s
    </div>
    <script>
        mermaid.initialize({ startOnLoad: true, theme: 'default', securityLevel: 'loose' });
    </script>
</body>
</html>
`, html.EscapeString(title), CDNURL(), html.EscapeString(title), source)
}

// FileName sanitizes a diagram title into a source file name with the
// given extension (e.g. "mmd", "html").
func FileName(title, ext string) string {
	safe := strings.TrimSpace(title)
	if safe == "" {
		safe = "diagram"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return replacer.Replace(safe) + "." + ext
}
