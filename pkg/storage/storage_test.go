package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return fs
}

func TestFS(t *testing.T) {
	ctx := context.Background()

	t.Run("it should save and read back a proof", func(t *testing.T) {
		fs := newTestFS(t)

		stored, err := fs.Save(ctx, "intermedio-femenino/DL-2026-1234.png", strings.NewReader("bytes"))
		require.NoError(t, err)
		assert.Equal(t, "intermedio-femenino/DL-2026-1234.png", stored)

		file, err := fs.Open(stored)
		require.NoError(t, err)
		defer file.Close()

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "bytes", string(data))
	})

	t.Run("it should tolerate removing a missing path", func(t *testing.T) {
		fs := newTestFS(t)
		assert.NoError(t, fs.Remove(ctx, "nope/absent.png"))
	})

	t.Run("it should remove a stored proof", func(t *testing.T) {
		fs := newTestFS(t)
		stored, err := fs.Save(ctx, "a/b.pdf", strings.NewReader("x"))
		require.NoError(t, err)

		require.NoError(t, fs.Remove(ctx, stored))
		_, err = fs.Open(stored)
		assert.Error(t, err)
	})

	t.Run("it should reject traversal out of the root", func(t *testing.T) {
		fs := newTestFS(t)
		_, err := fs.Save(ctx, "../escape.png", strings.NewReader("x"))
		assert.Error(t, err)
	})
}

func TestSigner(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	signer := NewSigner("secret", "https://dareleague.co/")
	signer.now = func() time.Time { return base }

	t.Run("it should produce a URL that verifies", func(t *testing.T) {
		u, err := signer.SignedURL("a/DL-2026-1234.png", time.Hour)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "https://dareleague.co/files/a/DL-2026-1234.png?"), u)

		q := u[strings.Index(u, "?")+1:]
		params := map[string]string{}
		for _, kv := range strings.Split(q, "&") {
			parts := strings.SplitN(kv, "=", 2)
			params[parts[0]] = parts[1]
		}
		assert.NoError(t, signer.Verify("a/DL-2026-1234.png", params["exp"], params["sig"]))
	})

	t.Run("it should reject a tampered path", func(t *testing.T) {
		exp := base.Add(time.Hour).Unix()
		sig := signer.sign("a/original.png", exp)
		err := signer.Verify("a/other.png", "1770000000", sig)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("it should reject an expired link", func(t *testing.T) {
		exp := base.Add(time.Hour).Unix()
		sig := signer.sign("a/b.png", exp)

		signer.now = func() time.Time { return base.Add(2 * time.Hour) }
		defer func() { signer.now = func() time.Time { return base } }()

		assert.ErrorIs(t, signer.Verify("a/b.png", "", sig), ErrBadSignature)
		assert.ErrorIs(t,
			signer.Verify("a/b.png", strconv.FormatInt(exp, 10), sig), ErrExpiredURL)
	})

	t.Run("it should reject an empty path", func(t *testing.T) {
		_, err := signer.SignedURL("", time.Hour)
		assert.Error(t, err)
	})
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	fs := newTestFS(t)
	signer := NewSigner("secret", "http://localhost")
	handler := NewHandler(fs, signer, zap.NewNop())

	_, err := fs.Save(ctx, "a/b.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	serve := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)
		return rec
	}

	t.Run("it should serve a file behind a valid signature", func(t *testing.T) {
		u, err := signer.SignedURL("a/b.png", time.Hour)
		require.NoError(t, err)
		target := strings.TrimPrefix(u, "http://localhost/files")

		rec := serve(target)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "png-bytes", rec.Body.String())
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	})

	t.Run("it should refuse a bad signature", func(t *testing.T) {
		rec := serve("/a/b.png?exp=9999999999&sig=deadbeef")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("it should mark an expired link as gone", func(t *testing.T) {
		signer.now = func() time.Time { return time.Unix(1, 0) }
		u, err := signer.SignedURL("a/b.png", time.Second)
		require.NoError(t, err)
		signer.now = time.Now

		target := strings.TrimPrefix(u, "http://localhost/files")
		rec := serve(target)
		assert.Equal(t, http.StatusGone, rec.Code)
	})
}
