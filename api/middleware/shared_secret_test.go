package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/umarxon/delivera-backend/pkg/logger"
)

func secretTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestSharedSecretAllowsMatchingHeader(t *testing.T) {
	called := false
	handler := SharedSecret("s3cret", secretTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ops/integrity/report", nil)
	req.Header.Set("X-Ops-Secret", "s3cret")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if !called {
		t.Fatal("expected next handler to run")
	}
	if resp.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestSharedSecretRejectsMismatch(t *testing.T) {
	handler := SharedSecret("s3cret", secretTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ops/integrity/report", nil)
	req.Header.Set("X-Ops-Secret", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestSharedSecretFailsClosedWhenUnconfigured(t *testing.T) {
	handler := SharedSecret("", secretTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ops/integrity/report", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
