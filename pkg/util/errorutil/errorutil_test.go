package errorutil

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestConstructorsCarryStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("nope"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewInvalidTransition("wrong state", nil), "INVALID_TRANSITION", http.StatusBadRequest},
		{NewStoreUnavailable(errors.New("conn refused")), "STORE_UNAVAILABLE", http.StatusServiceUnavailable},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		if de.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, de.Code)
		}
		if de.HTTPStatus != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, de.HTTPStatus)
		}
	}
}

func TestToDomainError_MapsStoreErrors(t *testing.T) {
	if de := ToDomainError(pgx.ErrNoRows); de.Code != "NOT_FOUND" {
		t.Errorf("no rows must map to NOT_FOUND, got %s", de.Code)
	}
	if de := ToDomainError(context.DeadlineExceeded); de.Code != "STORE_UNAVAILABLE" {
		t.Errorf("deadline must map to STORE_UNAVAILABLE, got %s", de.Code)
	}
	if de := ToDomainError(errors.New("anything else")); de.Code != "INTERNAL_ERROR" {
		t.Errorf("unknown errors must map to INTERNAL_ERROR, got %s", de.Code)
	}
}

func TestToDomainError_PassesThroughWrapped(t *testing.T) {
	inner := NewInvalidTransition("wrong state", map[string]any{"state": "OPEN"})
	wrapped := errors.Join(errors.New("context"), inner)

	de := ToDomainError(wrapped)
	if de.Code != "INVALID_TRANSITION" {
		t.Errorf("wrapped domain error must survive, got %s", de.Code)
	}
	if de.Details["state"] != "OPEN" {
		t.Error("details must be preserved")
	}
}

func TestMapError_NilStaysNil(t *testing.T) {
	if MapError(nil) != nil {
		t.Error("nil must map to nil")
	}
}
