package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJWKSHealthPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://idp.example.com/realms/cms/protocol/openid-connect/certs", "/realms/cms/protocol/openid-connect/certs"},
		{"https://idp.example.com/.well-known/jwks.json", "/.well-known/jwks.json"},
		{"https://idp.example.com", "/health"},
		{"://broken", "/health"},
	}

	for _, tt := range tests {
		if got := jwksHealthPath(tt.url); got != tt.want {
			t.Errorf("jwksHealthPath(%q) = %q, ожидалось %q", tt.url, got, tt.want)
		}
	}
}

func TestNewDephealthService_NoDependencies(t *testing.T) {
	_, err := NewDephealthServiceWithRegisterer("media-store", "media-store",
		DephealthTargets{}, 15*time.Second, testLogger(), prometheus.NewRegistry())
	if !errors.Is(err, ErrNoDependencies) {
		t.Errorf("ожидалась ErrNoDependencies, получено %v", err)
	}
}

func TestNewDephealthService_JWKSOnly(t *testing.T) {
	ds, err := NewDephealthServiceWithRegisterer("media-store", "media-store",
		DephealthTargets{JWKSURL: "https://idp.example.com/realms/cms/protocol/openid-connect/certs"},
		15*time.Second, testLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewDephealthService: %v", err)
	}
	if ds == nil {
		t.Fatal("ожидался сервис мониторинга")
	}
}
