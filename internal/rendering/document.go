package rendering

import (
	"bytes"
	"html/template"
)

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 40pt 30pt; }
html, body { margin: 0; padding: 0; }
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 10.5pt; line-height: 1.4; color: #111827; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
a { color: inherit; }
img { max-width: 100%; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Document wraps an already sanitized fragment in a printable A4 page.
func Document(fragment, title string) string {
	if title == "" {
		title = "Resume"
	}
	var buf bytes.Buffer
	// The template is static and both fields are strings, so Execute cannot fail.
	_ = documentTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(fragment),
	})
	return buf.String()
}
