package storage

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves stored proofs to holders of a valid signed URL.
type Handler struct {
	fs     *FS
	signer *Signer
	logger *zap.Logger
}

func NewHandler(fs *FS, signer *Signer, logger *zap.Logger) *Handler {
	return &Handler{fs: fs, signer: signer, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.serve)
	return r
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	exp := r.URL.Query().Get("exp")
	sig := r.URL.Query().Get("sig")

	if err := h.signer.Verify(path, exp, sig); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, ErrExpiredURL) {
			status = http.StatusGone
		}
		http.Error(w, "enlace inválido o vencido", status)
		return
	}

	file, err := h.fs.Open(path)
	if err != nil {
		http.Error(w, "archivo no encontrado", http.StatusNotFound)
		return
	}
	defer file.Close()

	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Warn("proof serving interrupted", zap.String("path", path), zap.Error(err))
	}
}
