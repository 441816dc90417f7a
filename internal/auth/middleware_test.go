package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func protectedApp(svc *Service) *fiber.App {
	app := fiber.New()
	app.Get("/private", Protect(svc), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Email)
	})
	return app
}

func TestProtect(t *testing.T) {
	svc, _ := newTestService(t)
	_, token, err := svc.Signup(context.Background(), SignupInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	ghost, _ := svc.tokens.Issue("ghost")

	tests := []struct {
		name       string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", cookie: token, wantStatus: http.StatusOK, wantBody: "ann@example.com"},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantBody: "Not authenticated"},
		{name: "invalid", cookie: "nope", wantStatus: http.StatusUnauthorized, wantBody: "Invalid token"},
		{name: "user gone", cookie: ghost, wantStatus: http.StatusUnauthorized, wantBody: "User not found"},
	}

	app := protectedApp(svc)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tc.cookie})
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tc.wantBody) {
				t.Fatalf("expected body to contain %q, got %q", tc.wantBody, body)
			}
		})
	}
}

func TestSetCookieAttributes(t *testing.T) {
	app := fiber.New()
	app.Get("/login", func(c *fiber.Ctx) error {
		SetCookie(c, "abc", 7*24*time.Hour, true)
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header := resp.Header.Get("Set-Cookie")
	for _, want := range []string{"token=abc", "HttpOnly", "secure", "SameSite=None", "max-age=604800"} {
		if !strings.Contains(strings.ToLower(header), strings.ToLower(want)) {
			t.Fatalf("expected %q in Set-Cookie %q", want, header)
		}
	}
}
