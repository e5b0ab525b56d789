package admin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dareleague/registration/internal/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(store *memStore) http.Handler {
	svc := newTestService(store, &memProofs{}, nil)
	return NewHandler(zap.NewNop(), svc).Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	t.Run("it should list registrations with filters applied", func(t *testing.T) {
		h := newTestHandler(newMemStore(
			sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending),
			sample("2", "DL-2026-2222", "Pedro Mejía", registration.StatusApproved),
		))

		rec := do(t, h, http.MethodGet, "/?status=APPROVED", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pedro Mejía")
		assert.NotContains(t, rec.Body.String(), "Ana Ríos")
	})

	t.Run("it should approve and return the updated row", func(t *testing.T) {
		store := newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending))
		h := newTestHandler(store)

		rec := do(t, h, http.MethodPost, "/1/approve", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"APPROVED"`)
	})

	t.Run("it should reject with the note from the body", func(t *testing.T) {
		store := newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending))
		h := newTestHandler(store)

		rec := do(t, h, http.MethodPost, "/1/reject", `{"note":"Pago incompleto"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pago incompleto")
	})

	t.Run("it should answer 404 for an unknown id", func(t *testing.T) {
		h := newTestHandler(newMemStore())
		rec := do(t, h, http.MethodPost, "/ghost/approve", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("it should answer 409 for an impossible transition", func(t *testing.T) {
		store := newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusApproved))
		h := newTestHandler(store)

		rec := do(t, h, http.MethodPost, "/1/reject", `{"note":"x"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("it should delete and answer no content", func(t *testing.T) {
		store := newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending))
		h := newTestHandler(store)

		rec := do(t, h, http.MethodDelete, "/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{"1"}, store.deleted)
	})

	t.Run("it should export CSV with the fixed header", func(t *testing.T) {
		h := newTestHandler(newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending)))

		rec := do(t, h, http.MethodGet, "/export.csv", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Nombre,Cédula"))
	})

	t.Run("it should export a non-empty workbook", func(t *testing.T) {
		h := newTestHandler(newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending)))

		rec := do(t, h, http.MethodGet, "/export.xlsx", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("it should serve stats", func(t *testing.T) {
		h := newTestHandler(newMemStore(
			sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusApproved),
		))

		rec := do(t, h, http.MethodGet, "/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"revenue":170000`)
	})

	t.Run("it should sign a proof url", func(t *testing.T) {
		h := newTestHandler(newMemStore(sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending)))

		rec := do(t, h, http.MethodGet, "/1/proof-url", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "DL-2026-1111.png")
	})

	t.Run("it should gate the flyer behind approval", func(t *testing.T) {
		store := newMemStore(
			sample("1", "DL-2026-1111", "Ana Ríos", registration.StatusPending),
			sample("2", "DL-2026-2222", "Pedro Mejía", registration.StatusApproved),
		)
		h := newTestHandler(store)

		rec := do(t, h, http.MethodGet, "/1/flyer.png", "")
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = do(t, h, http.MethodGet, "/2/flyer.png", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

		rec = do(t, h, http.MethodGet, "/2/flyer.html", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pedro Mejía")
	})
}
