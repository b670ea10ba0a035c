package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"joyeria/internal/http/handlers"
)

func TestRateLimits(t *testing.T) {
	lim := handlers.DefaultLimits()
	lim.Search, lim.Availability, lim.Window = 3, 3, time.Minute
	ta := newTestApp(t, lim)

	for i := 0; i < 4; i++ {
		resp := ta.get(t, "/api/v1/availability?productId=anillo-solitario", "")
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}

	for i := 0; i < 4; i++ {
		resp := ta.get(t, "/search?q=plata", "")
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("search limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after search limit, got %d", resp.StatusCode)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	ta := newTestApp(t, handlers.DefaultLimits())
	csrfTok := ta.csrfToken(t)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/cart", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	resp, err := ta.app.Test(req, -1)
	// fasthttp may refuse the body before a response is written
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, readBody(t, resp))
	}
}
