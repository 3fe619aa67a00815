// Package views embeds the console's HTML templates.
package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Page names, as passed to gin's c.HTML.
const (
	UsersList = "users_list.html"
	UserEdit  = "user_edit.html"
	Loading   = "loading.html"
	Saving    = "saving.html"
	Error     = "error.html"
)

// Templates parses every page and the shared layout blocks.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"add": func(a, b int64) int64 { return a + b },
	}).ParseFS(files, "templates/*.html"))
}
