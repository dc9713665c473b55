package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doCORSRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSConfiguredOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	r := corsRouter()

	w := doCORSRequest(r, "GET", "https://staging.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://staging.example.com" {
		t.Errorf("Allow-Origin = %q, want the configured origin echoed", got)
	}
}

func TestCORSUnlistedOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
	r := corsRouter()

	w := doCORSRequest(r, "GET", "https://evil.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for an unlisted origin", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, the request itself still goes through", w.Code)
	}
}

func TestCORSAllowAll(t *testing.T) {
	t.Setenv("CORS_ALLOW_ALL", "true")
	r := corsRouter()

	w := doCORSRequest(r, "GET", "https://anywhere.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Errorf("Allow-Origin = %q, want any origin echoed with CORS_ALLOW_ALL", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
	r := corsRouter()

	w := doCORSRequest(r, "OPTIONS", "https://app.example.com")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}
