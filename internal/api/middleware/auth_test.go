package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// testKeyID — идентификатор ключа для тестов.
const testKeyID = "test-key"

// generateTestToken подписывает JWT тестовым ключом.
func generateTestToken(key *rsa.PrivateKey, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	return token.SignedString(key)
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}

	data, _ := json.Marshal(jwks)
	return data
}

// newTestJWTAuth создаёт JWTAuth с RSA ключом для тестов.
func newTestJWTAuth(t *testing.T) (*JWTAuth, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("не удалось создать keyfunc из JWKS JSON: %v", err)
	}

	return NewJWTAuthWithKeyfunc(kf, 5*time.Second, testLogger()), key
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustNotBeCalled(t *testing.T) http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler не должен быть вызван")
	})
}

func TestJWTAuth_ValidToken(t *testing.T) {
	auth, key := newTestJWTAuth(t)

	handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sub := SubjectFromContext(r.Context()); sub != "editor-1" {
			t.Errorf("ожидался sub=editor-1, получен %s", sub)
		}
		scopes := ScopesFromContext(r.Context())
		if len(scopes) != 2 || scopes[0] != "media:write" || scopes[1] != ScopeAdmin {
			t.Errorf("неожиданные scopes: %v", scopes)
		}
		w.WriteHeader(http.StatusOK)
	}))

	tokenString, err := generateTestToken(key, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "editor-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		ScopeString: "media:write",
		ScopeArray:  []string{ScopeAdmin},
	})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d, тело: %s", rec.Code, rec.Body.String())
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	auth, key := newTestJWTAuth(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	valid := jwt.RegisteredClaims{
		Subject:   "editor-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	expired, _ := generateTestToken(key, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "editor-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	noSubject, _ := generateTestToken(key, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	noExpiry, _ := generateTestToken(key, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "editor-1",
	}})
	foreign, _ := generateTestToken(otherKey, Claims{RegisteredClaims: valid})

	tests := []struct {
		name   string
		header string
	}{
		{"нет заголовка", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"без префикса Bearer", "token123"},
		{"пустой токен", "Bearer "},
		{"мусор вместо токена", "Bearer not-a-jwt"},
		{"просроченный токен", "Bearer " + expired},
		{"нет sub", "Bearer " + noSubject},
		{"нет exp", "Bearer " + noExpiry},
		{"чужой ключ", "Bearer " + foreign},
	}

	handler := auth.Middleware()(mustNotBeCalled(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("ожидался статус 401, получен %d", rec.Code)
			}
		})
	}
}

func TestDevAuth(t *testing.T) {
	auth := NewDevAuth(testLogger())

	t.Run("идентичность из заголовка", func(t *testing.T) {
		handler := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sub := SubjectFromContext(r.Context()); sub != "dev-user" {
				t.Errorf("ожидался sub=dev-user, получен %q", sub)
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)
		req.Header.Set(DevUserHeader, "dev-user")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("ожидался статус 200, получен %d", rec.Code)
		}
	})

	t.Run("без заголовка 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil)
		rec := httptest.NewRecorder()
		auth.Middleware()(mustNotBeCalled(t)).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("ожидался статус 401, получен %d", rec.Code)
		}
	})
}

func TestRequireScope(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		ctx    context.Context
		status int
	}{
		{"scope есть", WithIdentity(context.Background(), "u", []string{"media:write", ScopeAdmin}), http.StatusOK},
		{"scope нет", WithIdentity(context.Background(), "u", []string{"media:write"}), http.StatusForbidden},
		{"scopes не заданы", context.Background(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()

			RequireScope(ScopeAdmin)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("ожидался статус %d, получен %d", tt.status, rec.Code)
			}
		})
	}
}

func TestSubjectFromContext_Empty(t *testing.T) {
	if sub := SubjectFromContext(context.Background()); sub != "" {
		t.Errorf("ожидалась пустая строка, получено %q", sub)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/v1/uploads", "/api/v1/uploads"},
		{"/api/v1/uploads/1700000000000-abc-cat.png", "/api/v1/uploads/{filename}"},
		{"/uploads/1700000000000-abc.png", "/uploads/{filename}"},
		{"/uploads/", "other"},
		{"/wp-admin", "other"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path, "/uploads/"); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.path, got, tt.want)
		}
	}
}
