package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func TestRequestTimeoutReachesHandlers(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), 5*time.Second)

	var deadline time.Time
	var hasDeadline bool
	app.Get("/check", func(c *fiber.Ctx) error {
		// Handlers hand c.UserContext() to the services, so the per-request
		// deadline must be present there.
		deadline, hasDeadline = c.UserContext().Deadline()
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/check", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if !hasDeadline {
		t.Fatal("request context must carry the configured deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > 5*time.Second {
		t.Errorf("unexpected deadline window: %v", remaining)
	}
}

func TestRequestTimeoutDisabled(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), 0)

	var hasDeadline bool
	app.Get("/check", func(c *fiber.Ctx) error {
		_, hasDeadline = c.UserContext().Deadline()
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/check", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if hasDeadline {
		t.Error("zero timeout must leave the request context unbounded")
	}
}
