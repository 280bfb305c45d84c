// ABOUTME: Template loading and rendering for admin UI.
// ABOUTME: Embeds HTML templates and provides render helpers.

package admin

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	layoutTmpl *template.Template
	pageTmpls  map[string]*template.Template
)

// pageDefinitions maps page names to their template files
var pageDefinitions = map[string]string{
	"dashboard": "templates/dashboard.html",
	"entity":    "templates/entity.html",
	"logs":      "templates/logs.html",
}

var templateFuncs = template.FuncMap{
	"lower":       strings.ToLower,
	"statusClass": statusClass,
	"percent":     func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
}

// statusClass picks the badge color for an HTTP status code.
func statusClass(code int) string {
	switch {
	case code >= 500 || code == 0:
		return "bg-red-100 text-red-800"
	case code >= 400:
		return "bg-yellow-100 text-yellow-800"
	default:
		return "bg-green-100 text-green-800"
	}
}

func init() {
	layoutTmpl = template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html"))

	// Each page gets its own copy of the layout so "content" blocks don't collide.
	pageTmpls = make(map[string]*template.Template, len(pageDefinitions))
	for name, path := range pageDefinitions {
		tmpl := template.Must(layoutTmpl.Clone())
		pageTmpls[name] = template.Must(tmpl.ParseFS(templateFS, path))
	}
}

func renderPage(w io.Writer, page string, data any) error {
	tmpl, ok := pageTmpls[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
