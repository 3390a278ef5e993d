package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/juazsh/ata-portal-sub001/internal/config"
)

func TestRegisterDocsRoutesServesEndpointReference(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{AppEnv: "development", EnableDocs: true}

	if err := registerDocsRoutes(app, cfg); err != nil {
		t.Fatalf("registerDocsRoutes: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test docs page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected docs page status 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'none'") {
		t.Fatalf("expected restrictive CSP, got %q", got)
	}
	if got := resp.Header.Get("X-Robots-Tag"); got != "noindex, nofollow" {
		t.Fatalf("expected noindex robots tag, got %q", got)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	page := string(body)
	for _, path := range []string{"/api/auth/login", "/api/v1/enrollments", "/api/v1/schedules", "/api/v1/ws"} {
		if !strings.Contains(page, path) {
			t.Fatalf("expected docs page to list %s", path)
		}
	}
}

func TestRegisterDocsRoutesDisabledOutsideDevelopment(t *testing.T) {
	cases := []struct {
		name string
		cfg  *config.Config
	}{
		{"production with flag", &config.Config{AppEnv: "production", EnableDocs: true}},
		{"development without flag", &config.Config{AppEnv: "development", EnableDocs: false}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			if err := registerDocsRoutes(app, tc.cfg); err != nil {
				t.Fatalf("registerDocsRoutes: %v", err)
			}

			req := httptest.NewRequest(http.MethodGet, "/docs", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusNotFound {
				t.Fatalf("expected 404 when docs disabled, got %d", resp.StatusCode)
			}
		})
	}
}
