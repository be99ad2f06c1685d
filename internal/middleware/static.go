package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticFileServer serves stored attachments from dir. Directory listings
// and paths escaping dir are answered with 404.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/"))
		path := filepath.Join(dir, name)

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=2592000")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeFile(w, r, path)
	})
}
