// Package web embeds the capture form served at the root path.
package web

import (
	"embed"
	"net/http"
)

//go:embed form.html
var fs embed.FS

// FormHandler serves the embedded capture form page.
func FormHandler() http.HandlerFunc {
	page, err := fs.ReadFile("form.html")
	if err != nil {
		panic("web: embedded form missing: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}
