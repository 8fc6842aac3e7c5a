package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{MaxQuestionLength: 50}))
	app.Post("/api/v1/ask", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/api/v1/report", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func postAsk(t *testing.T, app *fiber.App, body string) int {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestValidQuestionPasses(t *testing.T) {
	app := newTestApp()

	if code := postAsk(t, app, `{"question": "Why are fees so high?"}`); code != fiber.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
}

func TestMissingQuestionRejected(t *testing.T) {
	app := newTestApp()

	if code := postAsk(t, app, `{"product_filter": "Credit card"}`); code != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
	if code := postAsk(t, app, `{"question": "   "}`); code != fiber.StatusBadRequest {
		t.Errorf("blank question status = %d, want 400", code)
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	app := newTestApp()

	if code := postAsk(t, app, `{"question": `); code != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestOverlongQuestionRejected(t *testing.T) {
	app := newTestApp()

	long := strings.Repeat("a", 60)
	if code := postAsk(t, app, `{"question": "`+long+`"}`); code != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestSuspiciousQuestionRejected(t *testing.T) {
	app := newTestApp()

	if code := postAsk(t, app, `{"question": "<script>alert(1)</script>"}`); code != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestNonAskRoutesSkipValidation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/report", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
