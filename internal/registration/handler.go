package registration

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dareleague/registration/internal/event"
	"github.com/dareleague/registration/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the public registration API. No authentication: everything
// here is reachable by athletes.
type Handler struct {
	logger *zap.Logger
	svc    *Service
}

func NewHandler(logger *zap.Logger, svc *Service) *Handler {
	return &Handler{logger: logger, svc: svc}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.submit)
	r.Get("/availability", h.availability)
	r.Get("/pricing", h.pricing)
	r.Get("/status", h.status)
	r.Get("/content", h.content)
	r.Get("/recent", h.recent)
	return r
}

// submit accepts the wizard as multipart/form-data: text fields plus the
// payment proof under "payment_proof".
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxProofSize + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "Formulario inválido")
		return
	}

	form := Form{
		FullName:       r.FormValue("full_name"),
		DocumentID:     r.FormValue("document_id"),
		Age:            r.FormValue("age"),
		Phone:          r.FormValue("phone"),
		Email:          r.FormValue("email"),
		Category:       r.FormValue("category"),
		Gender:         r.FormValue("gender"),
		ShirtSize:      r.FormValue("shirt_size"),
		Gym:            r.FormValue("gym"),
		EmergencyName:  r.FormValue("emergency_name"),
		EmergencyPhone: r.FormValue("emergency_phone"),
		PaymentMethod:  r.FormValue("payment_method"),
		TermsAccepted:  r.FormValue("terms_accepted") == "true" || r.FormValue("terms_accepted") == "on",
	}

	var proof *Proof
	if file, header, err := r.FormFile("payment_proof"); err == nil {
		defer file.Close()
		proof = &Proof{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		}
	}

	refID, fieldErrs, err := h.svc.Submit(r.Context(), form, proof)
	switch {
	case err == nil && fieldErrs.Empty():
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"registration_id": refID,
			"status":          string(StatusPending),
			"message":         "Inscripción recibida. Tu cupo NO está confirmado hasta que validemos tu pago.",
		})
	case err == nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": fieldErrs,
		})
	case errors.Is(err, ErrClosed):
		writeError(w, http.StatusConflict, "Inscripciones Cerradas")
	case errors.Is(err, ErrSlotsFull):
		writeError(w, http.StatusConflict, "Lo sentimos, el cupo para esta categoría se acaba de agotar.")
	default:
		h.logger.Error("submission failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Error inesperado al procesar el registro. Intenta de nuevo.")
	}
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"buckets": h.svc.Availability(r.Context()),
	})
}

func (h *Handler) pricing(w http.ResponseWriter, r *http.Request) {
	tier, state := h.svc.tiers.Current()

	resp := map[string]interface{}{
		"state": state.String(),
		"tiers": h.tierTable(),
	}
	if state == pricing.StateOpen {
		resp["active_tier"] = tier
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) tierTable() []pricing.Tier {
	if r, ok := h.svc.tiers.(interface{ Tiers() []pricing.Tier }); ok {
		return r.Tiers()
	}
	return pricing.Tiers()
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Status(r.Context(), r.URL.Query().Get("document_id"))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "No se encontró ninguna inscripción con este documento.")
	case err != nil:
		h.logger.Error("status lookup failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Error al consultar. Intenta de nuevo.")
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// recent feeds the landing-page athlete wall.
func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Wall(r.Context())
	if err != nil {
		h.logger.Error("athlete wall failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Error al consultar. Intenta de nuevo.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"athletes": entries})
}

// content serves the static landing-page reference data.
func (h *Handler) content(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"event": map[string]interface{}{
			"name":       event.Name,
			"year":       event.Year,
			"location":   event.Location,
			"start_date": event.StartDate,
		},
		"categories": event.Categories(),
		"prizes": map[string]interface{}{
			"categories": event.Prizes(),
			"disclaimer": event.PrizeDisclaimer,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
