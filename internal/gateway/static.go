package gateway

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticFileServer serves files from dir. Paths that do not name a file
// get the fallback document so a client side router can handle them.
func staticFileServer(dir, fallback string) http.Handler {
	fs := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, fallback))
	})
}
