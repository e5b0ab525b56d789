package admin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dareleague/registration/internal/flyer"
	"github.com/dareleague/registration/internal/registration"
	"github.com/dareleague/registration/pkg/export"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the dashboard API. The router is mounted behind the auth
// middleware, no handler here checks credentials on its own.
type Handler struct {
	logger *zap.Logger
	svc    *Service
}

func NewHandler(logger *zap.Logger, svc *Service) *Handler {
	return &Handler{logger: logger, svc: svc}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.xlsx", h.exportXlsx)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/reject", h.reject)
	r.Delete("/{id}", h.remove)
	r.Get("/{id}/proof-url", h.proofURL)
	r.Get("/{id}/flyer.png", h.flyerPNG)
	r.Get("/{id}/flyer.html", h.flyerHTML)
	return r
}

// view is the dashboard row shape. Kept separate from the storage model so
// the API contract does not move when a column does.
type view struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registration_id"`
	FullName       string `json:"full_name"`
	DocumentID     string `json:"document_id"`
	Age            int    `json:"age"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Category       string `json:"category"`
	Gender         string `json:"gender"`
	ShirtSize      string `json:"shirt_size"`
	Gym            string `json:"gym,omitempty"`
	EmergencyName  string `json:"emergency_name,omitempty"`
	EmergencyPhone string `json:"emergency_phone,omitempty"`
	PaymentMethod  string `json:"payment_method"`
	Status         string `json:"status"`
	RejectionNotes string `json:"rejection_notes,omitempty"`
	WhatsAppURL    string `json:"whatsapp_url,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toView(r registration.Registration) view {
	v := view{
		ID:             r.ID,
		RegistrationID: r.RegistrationID,
		FullName:       r.FullName,
		DocumentID:     r.DocumentID,
		Age:            r.Age,
		Phone:          r.Phone,
		Email:          r.Email,
		Category:       string(r.Category),
		Gender:         string(r.Gender),
		ShirtSize:      r.ShirtSize,
		Gym:            r.Gym,
		EmergencyName:  r.EmergencyName,
		EmergencyPhone: r.EmergencyPhone,
		PaymentMethod:  r.PaymentMethod,
		Status:         string(r.Status),
		RejectionNotes: r.RejectionNotes,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if digits := strings.TrimLeft(r.Phone, "+"); digits != "" {
		v.WhatsAppURL = "https://wa.me/57" + digits
	}
	return v
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	regs, err := h.svc.List(r.Context(), Filter{
		Query:    q.Get("q"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
	})
	if err != nil {
		h.fail(w, "list failed", err)
		return
	}

	views := make([]view, 0, len(regs))
	for _, reg := range regs {
		views = append(views, toView(reg))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"registrations": views})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.List(r.Context(), Filter{})
	if err != nil {
		h.fail(w, "stats failed", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ComputeStats(regs))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	reg, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.reviewError(w, "approve failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toView(reg))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if r.Body != nil {
		// Missing or malformed body just means an empty note.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	reg, err := h.svc.Reject(r.Context(), chi.URLParam(r, "id"), body.Note)
	if err != nil {
		h.reviewError(w, "reject failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toView(reg))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.reviewError(w, "delete failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) proofURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ProofURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.reviewError(w, "proof url failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.List(r.Context(), Filter{})
	if err != nil {
		h.fail(w, "csv export failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=inscripciones_%s.csv", time.Now().Format("2006-01-02")))
	if err := WriteCSV(w, regs); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
	}
}

func (h *Handler) exportXlsx(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.List(r.Context(), Filter{})
	if err != nil {
		h.fail(w, "xlsx export failed", err)
		return
	}

	// Buffered so a late excelize error does not leave a half-sent download.
	var buf bytes.Buffer
	if err := export.WriteXlsx(&buf, regs); err != nil {
		h.fail(w, "xlsx export failed", err)
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=inscripciones_%s.xlsx", time.Now().Format("2006-01-02")))
	_, _ = buf.WriteTo(w)
}

// flyerFor loads the registration and enforces that flyers exist only for
// approved athletes.
func (h *Handler) flyerFor(w http.ResponseWriter, r *http.Request) (registration.Registration, bool) {
	reg, err := h.svc.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.reviewError(w, "flyer failed", err)
		return registration.Registration{}, false
	}
	if reg.Status != registration.StatusApproved {
		writeError(w, http.StatusConflict, "El flyer solo está disponible para atletas aprobados.")
		return registration.Registration{}, false
	}
	return reg, true
}

func (h *Handler) flyerPNG(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.flyerFor(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := flyer.Render(&buf, reg.FullName, string(reg.Category), string(reg.Gender)); err != nil {
		h.fail(w, "flyer render failed", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=flyer_%s.png", reg.RegistrationID))
	_, _ = buf.WriteTo(w)
}

func (h *Handler) flyerHTML(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.flyerFor(w, r)
	if !ok {
		return
	}

	page, err := flyer.PrintableHTML(reg.FullName, string(reg.Category), string(reg.Gender))
	if err != nil {
		h.fail(w, "flyer render failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// reviewError maps the service error taxonomy for single-record actions.
func (h *Handler) reviewError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		writeError(w, http.StatusNotFound, "Inscripción no encontrada.")
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusConflict, "La inscripción no admite esta acción en su estado actual.")
	default:
		h.fail(w, msg, err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusBadGateway, "Error inesperado. Intenta de nuevo.")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
