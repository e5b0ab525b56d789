package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrExpiredURL   = errors.New("signed url expired")
	ErrBadSignature = errors.New("signature mismatch")
)

// Signer issues and verifies time-limited URLs for stored proofs, so the
// files themselves never need public read access.
type Signer struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewSigner(secret, baseURL string) *Signer {
	return &Signer{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// SignedURL returns "<base>/files/<path>?exp=<unix>&sig=<hex>" valid for ttl.
func (s *Signer) SignedURL(path string, ttl time.Duration) (string, error) {
	if path == "" {
		return "", errors.New("storage: empty path")
	}
	exp := s.now().Add(ttl).Unix()
	sig := s.sign(path, exp)
	return fmt.Sprintf("%s/files/%s?exp=%d&sig=%s",
		s.baseURL, escapePath(path), exp, sig), nil
}

// Verify checks signature and expiry for a request to path.
func (s *Signer) Verify(path, expStr, sig string) error {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if !hmac.Equal([]byte(s.sign(path, exp)), []byte(sig)) {
		return ErrBadSignature
	}
	if s.now().Unix() > exp {
		return ErrExpiredURL
	}
	return nil
}

func (s *Signer) sign(path string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", path, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
