package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	assetsPrefix = "/assets/"
	indexFile    = "index.html"
	notFoundBody = "file not found"
)

// StaticHandler serves the built SPA from disk: files under /assets/ and the
// entry document for every other path.
type StaticHandler struct {
	root string
}

// NewStaticHandler serves from root (the build output directory).
func NewStaticHandler(root string) *StaticHandler {
	return &StaticHandler{root: root}
}

// ServeAsset handles GET /assets/*. Anything that is not a regular file under
// <root>/assets is a plain-text 404.
func (s *StaticHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, assetsPrefix)
	// Clean against a rooted path so ".." cannot climb out of the assets dir.
	clean := path.Clean("/" + rel)
	if clean == "/" {
		writeNotFound(w)
		return
	}
	s.serveFile(w, r, filepath.Join(s.root, "assets", filepath.FromSlash(clean)))
}

// ServeIndex returns the SPA entry document so client-side routes resolve.
func (s *StaticHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	s.serveFile(w, r, filepath.Join(s.root, indexFile))
}

func (s *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := os.Open(name)
	if err != nil {
		writeNotFound(w)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeNotFound(w)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Del("Cache-Control")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}
