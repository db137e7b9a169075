package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-timeline/internal/config"
)

func TestCacheKeyIgnoresQueryOrder(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "timeline-cache", KeyStrategy: "route_query"}

	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/timeline")
		return cacheKeyFrom(cfg, c)
	}
	a := key("/v1/timeline?start=2025-01-01&days=14")
	b := key("/v1/timeline?days=14&start=2025-01-01")
	if a != b {
		t.Fatalf("keys differ: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "timeline-cache:") {
		t.Fatalf("missing prefix: %s", a)
	}
	if a == key("/v1/timeline?start=2025-01-02&days=14") {
		t.Fatal("different queries share a key")
	}
}

func TestTeeWriterDropsOversizedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &teeWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("def"))
	if !w.truncated || w.buf.Len() != 0 {
		t.Fatalf("expected truncation, buf=%q", w.buf.String())
	}
	if rec.Body.String() != "abcdef" {
		t.Fatalf("client body = %q", rec.Body.String())
	}
}

func TestInvalidateCacheNilClient(t *testing.T) {
	if n, err := InvalidateCache(context.Background(), nil, "x"); n != 0 || err != nil {
		t.Fatalf("got %d %v", n, err)
	}
}
