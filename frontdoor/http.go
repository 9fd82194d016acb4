package frontdoor

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// HTTPOptions configures the HTTP gateway.
type HTTPOptions struct {
	// MaxUploadSize bounds the request body of POST /documents.
	MaxUploadSize int64
	// AllowedOrigins lists CORS origins. Empty allows any origin.
	AllowedOrigins []string
	Logger         *slog.Logger
}

type gateway struct {
	svc       *Service
	maxUpload int64
	logger    *slog.Logger
}

// NewHTTPHandler exposes svc over HTTP:
//
//	POST /documents                 multipart upload, form field "file"
//	GET  /documents/{id}            JSON {filename, content}
//	GET  /documents/{id}/download   raw bytes, written frame by frame
//	GET  /healthz
func NewHTTPHandler(svc *Service, opts HTTPOptions) http.Handler {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxMessageSize
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	g := &gateway{
		svc:       svc,
		maxUpload: opts.MaxUploadSize,
		logger:    opts.Logger.With("component", "http-gateway"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(g.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", g.upload)
		r.Get("/{id}", g.get)
		r.Get("/{id}/download", g.download)
	})
	return r
}

func (g *gateway) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, g.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form field \"file\"")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	id, msg, err := g.svc.UploadDocument(r.Context(), filepath.Base(header.Filename), content)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{DocumentID: id, Message: msg})
}

func (g *gateway) get(w http.ResponseWriter, r *http.Request) {
	name, content, err := g.svc.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GetResponse{Filename: name, Content: content})
}

func (g *gateway) download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flusher, _ := w.(http.Flusher)
	started := false

	err := g.svc.DownloadDocument(r.Context(), id, func(frame []byte) error {
		if !started {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Disposition", "attachment; filename=\""+id+"\"")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	switch {
	case err != nil && !started:
		writeServiceError(w, err)
	case err != nil:
		// Headers are gone; dropping the connection is the only signal left.
		g.logger.Error("download aborted", "document_id", id, "err", err)
		panic(http.ErrAbortHandler)
	case !started:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
	}
}

func (g *gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		g.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
