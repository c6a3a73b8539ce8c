// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"fixxer/pricing"
	"fixxer/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Templates parses every page and partial.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Assets serves the embedded assets directory.
func Assets() http.FileSystem {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"safeCSS": func(s string) template.CSS { return template.CSS(s) },
		"bar": func(value int, color string) template.CSS {
			return template.CSS(fmt.Sprintf("width: %d%%; background-color: %s", value, color))
		},
		"percent": func(p int) template.CSS {
			return template.CSS(fmt.Sprintf("width: %d%%", p))
		},
		"faqTarget": pricing.ToggleFAQ,
		"join":      strings.Join,
		"lower":     strings.ToLower,
		"accept": func() string {
			return strings.Join(upload.Extensions(), ",")
		},
		"datetime": func(t time.Time) string {
			return t.Format("Jan 2, 2006, 3:04:05 PM")
		},
		"year": func() int { return time.Now().Year() },
	}
}
