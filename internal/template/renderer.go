package template

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed tmpl/*.html
var files embed.FS

// Link is a navbar entry.
type Link struct {
	Path  string
	Title string
}

type Data struct {
	PageTitle     string
	Authenticated bool
	Role          string
	Username      string
	Flash         string
	Error         string
	LoginPath     string
	Links         []Link
}

// Render executes tmpl inside base.html and writes it with status. Nothing is
// written when the template fails, so the caller can still send an error.
func Render(w http.ResponseWriter, _ *http.Request, status int, tmpl string, td any) error {
	t, err := template.ParseFS(files, "tmpl/"+tmpl, "tmpl/base.html")
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
