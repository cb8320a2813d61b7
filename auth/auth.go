// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// IssueToken signs userID into a session token of the form "<userID>.<sig>"
func IssueToken(userID, salt string) string {
	return userID + "." + sign(userID, salt)
}

// ParseToken verifies token and returns the user it was issued to
func ParseToken(token, salt string) (string, error) {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}
	userID, sig := token[:i], token[i+1:]
	if !hmac.Equal([]byte(sig), []byte(sign(userID, salt))) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// TokenFromRequest reads a bearer token, falling back to the "token" query
// parameter (browsers cannot set headers on a websocket handshake).
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

// Authenticate resolves the user behind the request's session token
func Authenticate(r *http.Request, salt string) (string, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return "", ErrMissingToken
	}
	return ParseToken(token, salt)
}

type userKey struct{}

func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the user attached by WithUser
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}

// HashIP creates a one-way hash of an IP address for logs
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 8 bytes is enough to correlate log lines
	return hex.EncodeToString(sum[:8])
}

func sign(userID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}
