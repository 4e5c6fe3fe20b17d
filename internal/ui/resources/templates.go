package resources

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"static": StaticPath,
}).ParseFS(templateFS, "templates/*.html"))

// RenderPage writes the named page wrapped in the shared layout. Every page
// template defines a "content" block the layout pulls in.
func RenderPage(w io.Writer, page string, data any) error {
	tmpl := pages.Lookup(page)
	if tmpl == nil {
		return fmt.Errorf("unknown page template %q", page)
	}
	return tmpl.Execute(w, data)
}

// RenderFragment writes a standalone template, used for SSE element patches.
func RenderFragment(w io.Writer, name string, data any) error {
	tmpl := pages.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("unknown fragment template %q", name)
	}
	return tmpl.Execute(w, data)
}
