// Package httpapi serves repertoire extraction over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/corpus"
	"github.com/freeeve/repertoire/internal/export"
	"github.com/freeeve/repertoire/internal/metrics"
	"github.com/freeeve/repertoire/internal/notation"
	"github.com/freeeve/repertoire/internal/repertoire"
)

// Handler runs one extraction per request.
type Handler struct {
	cfg     *config.Config
	metrics *metrics.Manager
	svc     notation.Service
	tmpDir  string
	log     zerolog.Logger
}

// NewRouter creates the HTTP router. Uploads are staged in tmpDir
// (os.TempDir() when empty).
func NewRouter(log zerolog.Logger, cfg *config.Config, m *metrics.Manager, tmpDir string) http.Handler {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	h := &Handler{
		cfg:     cfg,
		metrics: m,
		svc:     notation.SAN{},
		tmpDir:  tmpDir,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(log))

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.health)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Post("/v1/repertoire", h.repertoire)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// repertoire accepts a PGN body and query parameters color, depth, player
// and format, and returns the extracted repertoire.
func (h *Handler) repertoire(w http.ResponseWriter, r *http.Request) {
	rid := GetRequestID(r.Context())
	log := h.log.With().Str("rid", rid).Logger()

	q := r.URL.Query()
	colorParam := q.Get("color")
	if colorParam == "" {
		colorParam = h.cfg.Color
	}
	color, err := repertoire.ParseColor(colorParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	depth := h.cfg.Depth
	if s := q.Get("depth"); s != "" {
		depth, err = strconv.Atoi(s)
		if err != nil || depth < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid depth %q", s))
			return
		}
	}
	formatParam := q.Get("format")
	if formatParam == "" {
		formatParam = h.cfg.Format
	}
	format, err := export.ParseFormat(formatParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	path, err := h.stage(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		log.Error().Err(err).Msg("stage upload")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	defer os.Remove(path)

	games, err := corpus.Load(r.Context(), path, log)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	rep, err := repertoire.Extract(games, repertoire.Options{
		Color:  color,
		Depth:  depth,
		Player: q.Get("player"),
	}, h.svc, log)
	h.metrics.ObserveExtraction(len(games), rep, err, time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, repertoire.ErrNoPlayersFound):
			writeError(w, http.StatusUnprocessableEntity, err)
		case errors.Is(err, repertoire.ErrEmptyFilteredSet), errors.Is(err, repertoire.ErrEmptyOpeningSet):
			writeError(w, http.StatusNotFound, err)
		default:
			log.Error().Err(err).Msg("extract")
			writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		}
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	opts := export.Options{
		Opponent:  h.cfg.Opponent,
		Annotator: h.cfg.Annotator,
		LineWidth: h.cfg.LineWidth,
	}
	if err := export.Render(w, format, rep, opts); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

// stage copies the request body to a temp file the PGN reader can open.
// A body sent with Content-Encoding: zstd is kept compressed.
func (h *Handler) stage(w http.ResponseWriter, r *http.Request) (string, error) {
	limit := int64(h.cfg.MaxUploadMB) << 20
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	path := filepath.Join(h.tmpDir, "upload-"+uuid.NewString()+uploadSuffix(r))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func uploadSuffix(r *http.Request) string {
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "zstd") {
		return ".pgn.zst"
	}
	return ".pgn"
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
