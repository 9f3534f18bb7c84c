package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"

	"rollcall-hq/attendance/pkg/config"
	"rollcall-hq/attendance/pkg/telemetry/logging"
)

func newTestEngine(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware...)
	return engine
}

func TestRequestIDMiddleware(t *testing.T) {
	engine := newTestEngine(RequestIDMiddleware())
	var seen string
	engine.GET("/", func(c *gin.Context) {
		seen = logging.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "client id kept", header: "abc-123", wantSame: true},
		{name: "generated when missing", header: ""},
		{name: "replaced when too long", header: strings.Repeat("a", maxRequestIDLength+1)},
		{name: "replaced when not printable", header: "bad id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if tt.wantSame && got != tt.header {
				t.Errorf("request id = %q, want %q", got, tt.header)
			}
			if !tt.wantSame && len(got) != 32 {
				t.Errorf("generated id %q has length %d, want 32", got, len(got))
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	engine := newTestEngine(RecoveryMiddleware())
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })
	engine.GET("/pipe", func(c *gin.Context) {
		panic(fmt.Errorf("write: %w", syscall.EPIPE))
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeInternal) {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pipe", nil))
	if rec.Body.Len() != 0 {
		t.Errorf("broken connection wrote a body: %q", rec.Body.String())
	}
}

func TestIsBrokenConnection(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("write: %w", syscall.EPIPE), true},
		{fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{http.ErrAbortHandler, true},
		{errors.New("boom"), false},
	}

	for _, tt := range tests {
		if got := isBrokenConnection(tt.err); got != tt.want {
			t.Errorf("isBrokenConnection(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	cfg := &config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://app.example.com", "*.school.edu"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}
	engine := newTestEngine(CORSMiddleware(cfg))
	engine.GET("/api/stats", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
			t.Errorf("Allow-Methods = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
			t.Errorf("Max-Age = %q", got)
		}
	})

	origins := []struct {
		origin string
		want   string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://lab.school.edu", "https://lab.school.edu"},
		{"https://evil.example.org", ""},
	}
	for _, tt := range origins {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("disabled", func(t *testing.T) {
		engine := newTestEngine(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"*"}}))
		engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want none", got)
		}
	})
}
