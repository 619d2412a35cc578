package server

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
	"strings"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/api/middleware"
)

const testKeyID = "server-test-key"

// jwtEnv — окружение с проверкой JWT вместо заголовка X-User-ID.
type jwtEnv struct {
	*testEnv
	key *rsa.PrivateKey
}

func newJWTEnv(t *testing.T) *jwtEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	jwks, _ := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	})
	kf, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		t.Fatalf("keyfunc.NewJWKSetJSON: %v", err)
	}

	auth := middleware.NewJWTAuthWithKeyfunc(kf, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &jwtEnv{testEnv: newTestEnv(t, envOptions{auth: auth}), key: key}
}

// token подписывает JWT с указанными sub и scope.
func (e *jwtEnv) token(t *testing.T, subject, scope string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		ScopeString: scope,
	})
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(e.key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func TestJWT_ForgedUserHeaderRejected(t *testing.T) {
	env := newJWTEnv(t)

	// Заголовок X-User-ID без токена не даёт идентичности
	rec := env.do(t, uploadRequest(t, "mallory", "a.jpg", "image/jpeg", jpegBytes))
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
		t.Errorf("загрузка: статус = %d, тело = %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/cleanup?apply=true", nil)
	req.Header.Set(middleware.DevUserHeader, "admin")
	rec = env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("очистка: статус = %d, ожидался 401", rec.Code)
	}
}

func TestJWT_Scopes(t *testing.T) {
	env := newJWTEnv(t)

	tests := []struct {
		name       string
		method     string
		path       string
		scope      string
		wantStatus int
	}{
		{"список без scope", http.MethodGet, "/api/v1/uploads", "", http.StatusOK},
		{"очистка без media:admin", http.MethodPost, "/api/v1/maintenance/cleanup", "media:read", http.StatusForbidden},
		{"очистка с media:admin", http.MethodPost, "/api/v1/maintenance/cleanup", "media:read media:admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+env.token(t, "alice", tt.scope))

			rec := env.do(t, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидался %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestJWT_UploadWithToken(t *testing.T) {
	env := newJWTEnv(t)

	req := uploadRequest(t, "", "a.png", "image/png", pngBytes)
	req.Header.Set("Authorization", "Bearer "+env.token(t, "alice", ""))

	rec := env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("статус = %d, ожидался 201: %s", rec.Code, rec.Body.String())
	}
}

func TestJWT_PublicRoutes(t *testing.T) {
	env := newJWTEnv(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: статус = %d, ожидался 200 без токена", path, rec.Code)
		}
	}
}

// TestOpenAPI_AllOperationsRouted — каждая операция встроенного OpenAPI-документа смонтирована в роутере.
func TestOpenAPI_AllOperationsRouted(t *testing.T) {
	swagger, err := generated.GetSwagger()
	if err != nil {
		t.Fatalf("GetSwagger: %v", err)
	}
	if err := swagger.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI-документ невалиден: %v", err)
	}

	env := newTestEnv(t, envOptions{})
	routes, ok := env.handler.(chi.Routes)
	if !ok {
		t.Fatalf("роутер %T не реализует chi.Routes", env.handler)
	}

	mounted := make(map[string]bool)
	walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		mounted[method+" "+route] = true
		return nil
	}
	if err := chi.Walk(routes, walk); err != nil {
		t.Fatalf("chi.Walk: %v", err)
	}

	for path, item := range swagger.Paths.Map() {
		for method := range item.Operations() {
			key := strings.ToUpper(method) + " " + path
			if !mounted[key] {
				t.Errorf("операция %s не смонтирована", key)
			}
		}
	}
}
