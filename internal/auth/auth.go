// Package auth gates the admin surface. The credential comparison happens
// server-side against a bcrypt hash; the browser never sees anything it
// could compare a secret to.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("bad credentials")

type Gate struct {
	logger       *zap.Logger
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewGate(logger *zap.Logger, passwordHash, secret string, ttl time.Duration) *Gate {
	return &Gate{
		logger:       logger,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login checks the master password and issues a session token.
func (g *Gate) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}

	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	})

	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("Login failed: %w", err)
	}
	return signed, nil
}

// Verify validates a session token.
func (g *Gate) Verify(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !token.Valid {
		return ErrBadCredentials
	}
	return nil
}

// LoginHandler is mounted outside the gated router.
func (g *Gate) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		unauthorized(w)
		return
	}

	token, err := g.Login(body.Password)
	if err != nil {
		// Same answer for every failure mode, nothing to enumerate against.
		unauthorized(w)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Middleware requires a valid bearer token on every request it wraps.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			unauthorized(w)
			return
		}
		if err := g.Verify(token); err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Contraseña Incorrecta"})
}
