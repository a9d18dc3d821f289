package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func identityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity())
	router.GET("/api/v1/checks", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.OPTIONS("/api/v1/checks", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestIdentityAllowsOptionsWithoutIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/checks", nil)
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestIdentityStoresUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checks", nil)
	req.Header.Set(UserIDHeader, "42")
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != "42" {
		t.Fatalf("expected user id 42, got %q", resp.Body.String())
	}
}

func TestIdentityRejectsMissingOrMalformedHeader(t *testing.T) {
	for _, value := range []string{"", "../etc", "a_b", "x y"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/checks", nil)
		if value != "" {
			req.Header.Set(UserIDHeader, value)
		}
		resp := httptest.NewRecorder()
		identityRouter().ServeHTTP(resp, req)

		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", value, resp.Code)
		}
	}
}

func TestIdentitySkipsHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	identityRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
