package main

import (
	"embed"
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed ui
var uiFiles embed.FS

// fallbackHandler owns everything the API routes do not: unknown API paths
// get a descriptive 404, any other GET serves the single page app.
func (app *application) fallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		app.apiNotFoundHandler(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
		return
	}
	app.spaHandler(w, r)
}

// spaHandler serves the embedded single page app. Unknown paths fall back to
// index.html so client side routes survive a page reload.
func (app *application) spaHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" || name == "." {
		name = "index.html"
	}
	data, err := uiFiles.ReadFile("ui/" + name)
	if err != nil {
		name = "index.html"
		data, err = uiFiles.ReadFile("ui/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
	}
	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Write(data)
}
