package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAPICSPConfig(t *testing.T) {
	cfg := APICSPConfig()
	if len(cfg.DefaultSrc) != 1 || cfg.DefaultSrc[0] != "'none'" {
		t.Errorf("API DefaultSrc = %v, want ['none']", cfg.DefaultSrc)
	}
	want := "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"
	if got := cfg.BuildCSPHeader(); got != want {
		t.Errorf("BuildCSPHeader() = %q, want %q", got, want)
	}
}

func TestBuildCSPHeader(t *testing.T) {
	tests := []struct {
		name     string
		cfg      CSPConfig
		expected string
	}{
		{"empty", CSPConfig{}, ""},
		{
			"connect",
			CSPConfig{DefaultSrc: []string{"'self'"}, ConnectSrc: []string{"'self'", "wss://study.example"}},
			"default-src 'self'; connect-src 'self' wss://study.example",
		},
		{
			"upgrade",
			CSPConfig{DefaultSrc: []string{"'self'"}, UpgradeInsecureRequests: true},
			"default-src 'self'; upgrade-insecure-requests",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BuildCSPHeader(); got != tt.expected {
				t.Errorf("BuildCSPHeader() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(APICSPConfig()))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	expected := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": APICSPConfig().BuildCSPHeader(),
	}
	for header, want := range expected {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("header %s = %q, want %q", header, got, want)
		}
	}
}

func TestSanitizeUserInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  love  ", "love"},
		{"lo\x00ve", "love"},
		{"god\x07 is love", "god is love"},
		{"a\tb\nc", "a\tb\nc"},
		{"“in the beginning”", "“in the beginning”"},
	}
	for _, tt := range tests {
		if got := SanitizeUserInput(tt.in); got != tt.want {
			t.Errorf("SanitizeUserInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateContentType(t *testing.T) {
	allowed := []string{"application/json"}
	tests := []struct {
		in   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"Application/JSON", true},
		{"text/plain", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateContentType(tt.in, allowed); got != tt.want {
			t.Errorf("ValidateContentType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		origin  string
		allowed []string
		want    bool
	}{
		{"https://a.example", []string{"https://a.example"}, true},
		{"https://b.example", []string{"https://a.example"}, false},
		{"https://app.study.example", []string{"*.study.example"}, true},
		{"https://evilstudy.example", []string{"*.study.example"}, false},
		{"https://anything", []string{"*"}, true},
		{"", []string{"https://a.example"}, false},
		{"", []string{"*.study.example"}, false},
		{"https://a.example", nil, false},
	}
	for _, tt := range tests {
		if got := isOriginAllowed(tt.origin, tt.allowed); got != tt.want {
			t.Errorf("isOriginAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}
