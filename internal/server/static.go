// AngelaMos | 2026
// static.go

package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const indexFile = "index.html"

type spaHandler struct {
	root  http.Dir
	files http.Handler
	index string
}

func newSPAHandler(dir string) *spaHandler {
	return &spaHandler{
		root:  http.Dir(dir),
		files: http.FileServer(http.Dir(dir)),
		index: filepath.Join(dir, indexFile),
	}
}

// ServeHTTP serves existing files from the bundle and falls back to
// index.html so client-side routes resolve on reload.
func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	if name != "/" && !strings.HasSuffix(name, "/") {
		if f, err := h.root.Open(name); err == nil {
			stat, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !stat.IsDir() {
				h.files.ServeHTTP(w, r)
				return
			}
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, h.index)
}

func hasIndex(dir string) bool {
	stat, err := os.Stat(filepath.Join(dir, indexFile))
	return err == nil && !stat.IsDir()
}
