package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func paginationFor(t *testing.T, target string) (limit, offset int) {
	t.Helper()
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		limit, offset = pagination(c)
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	return limit, offset
}

func TestPaginationDefaults(t *testing.T) {
	limit, offset := paginationFor(t, "/t")
	if limit != 20 || offset != 0 {
		t.Errorf("expected 20/0, got %d/%d", limit, offset)
	}
}

func TestPaginationCapsPageSize(t *testing.T) {
	limit, offset := paginationFor(t, "/t?page=2&page_size=1000000")
	if limit != maxPageSize {
		t.Errorf("page_size must be capped at %d, got %d", maxPageSize, limit)
	}
	if offset != maxPageSize {
		t.Errorf("offset must use the capped page size, got %d", offset)
	}
}

func TestPaginationRejectsGarbage(t *testing.T) {
	limit, offset := paginationFor(t, "/t?page=-3&page_size=abc")
	if limit != 20 || offset != 0 {
		t.Errorf("invalid values must fall back to defaults, got %d/%d", limit, offset)
	}
}
