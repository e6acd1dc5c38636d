package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Terminal renders Markdown with ANSI styling. style is a glamour style
// name ("auto", "dark", "light", "notty"); empty means "auto".
func Terminal(md string, style string) (string, error) {
	if style == "" {
		style = "auto"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts Markdown to an HTML fragment.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; color: #222; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
td:nth-child(n+2) { font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
%s
</body>
</html>
`

// HTMLPage wraps the converted Markdown in a standalone page.
func HTMLPage(title, md string) ([]byte, error) {
	body, err := HTML(md)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(pageTemplate, html.EscapeString(title), body)), nil
}
