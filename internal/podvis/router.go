package podvis

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFiles embed.FS

// UIRouter serves the status page, its assets, and the event stream.
func UIRouter(stream http.Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Cache-Control", "Last-Event-ID"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))

	assets, _ := fs.Sub(staticFiles, "static")

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		serveFileFS(w, req, assets, "index.html")
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))
	r.Handle("/events/", stream)
	r.Get("/healthz", healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// ReflectorRouter accepts notifications on "/" for every method so that
// non-POST requests get the reflector's own 400 rather than a 405.
func ReflectorRouter(reflector http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", healthz)
	r.Handle("/", reflector)
	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// serveFileFS is the Go 1.21 equivalent of http.ServeFileFS for a regular
// file: it serves name from fsys via http.ServeContent.
func serveFileFS(w http.ResponseWriter, req *http.Request, fsys fs.FS, name string) {
	f, err := fsys.Open(name)
	if err != nil {
		serveFSError(w, err)
		return
	}
	defer f.Close()
	d, err := f.Stat()
	if err != nil {
		serveFSError(w, err)
		return
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, req, d.Name(), d.ModTime(), rs)
}

func serveFSError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}
