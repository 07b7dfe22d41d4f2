// Package templates embeds the HTML templates and static assets served by the router.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed *.tmpl static
var files embed.FS

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05 MST")
	},
}

// HTML parses every embedded template.
func HTML() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.tmpl")
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
