package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed assets/shell.html
var htmlShell string

var mdConverter = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts the Markdown report into a standalone styled page. The
// page doubles as the PDF input and as the fallback artifact when no PDF
// renderer is installed.
func RenderHTML(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := mdConverter.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("converting report markdown: %v", err)
	}

	t, err := template.New("shell").Parse(htmlShell)
	if err != nil {
		return "", fmt.Errorf("parsing html shell: %v", err)
	}

	var out bytes.Buffer
	data := map[string]string{
		"Title": title,
		"Body":  body.String(),
	}
	if err := t.Execute(&out, data); err != nil {
		return "", fmt.Errorf("rendering html shell: %v", err)
	}
	return out.String(), nil
}
