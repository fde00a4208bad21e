package httpapi

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hymnal-backend/internal/config"
	"github.com/tbourn/go-hymnal-backend/internal/repo/badgerstore"
	"github.com/tbourn/go-hymnal-backend/internal/services"
)

const routerXML = `<hymnal id="hb" title="Hymns">
  <topics><topic id="A" name="Grace"/></topics>
  <hymns>
    <hymn id="1"><topic ref="A"/><verse><line>Amazing grace</line></verse></hymn>
    <hymn id="2"><verse><line>Glory</line></verse></hymn>
  </hymns>
</hymnal>`

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:   "/api/v1",
		RateRPS:       100,
		RateBurst:     100,
		RateKeyHeader: "X-Client-ID",
		Catalog:       config.CatalogConfig{MaxDocumentBytes: 1 << 20, WarmupWorkers: 1},
		Security:      config.SecurityConfig{EnableHSTS: false},
		OTEL:          config.OTELConfig{ServiceName: "test-svc"},
	}
}

// newRouter wires RegisterRoutes over an in-memory badger catalog.
func newRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := badgerstore.Open("")
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cat, err := services.NewCatalog(st, nil, services.CatalogOptions{
		ParseCacheEntries: 8,
		MaxDocumentBytes:  cfg.Catalog.MaxDocumentBytes,
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	t.Cleanup(cat.Close)

	r := gin.New()
	RegisterRoutes(r, cat, cfg)
	return r
}

func serve(r http.Handler, method, path, body string, hdr ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newRouter(t, baseConfig())

	w := serve(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	w = serve(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "hymnal_http_requests_total") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	w = serve(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"not_found"`) {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodPost, "/health", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	// swagger is off by default
	if w := serve(r, http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be disabled, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r := newRouter(t, cfg)

	w := serve(r, http.MethodGet, "/health", "", "Origin", "http://example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = serve(r, http.MethodOptions, "/api/v1/documents", "",
		"Origin", "http://example.com",
		"Access-Control-Request-Method", "PUT",
		"Access-Control-Request-Headers", "X-Client-ID")
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(strings.ToLower(got), "x-client-id") {
		t.Fatalf("preflight allow headers = %q", got)
	}
}

func TestRegisterRoutes_DocumentLifecycleUnderBasePath(t *testing.T) {
	cfg := baseConfig()
	cfg.APIBasePath = "/api/v2"
	r := newRouter(t, cfg)

	if w := serve(r, http.MethodPut, "/api/v2/documents/hb", routerXML); w.Code != http.StatusCreated {
		t.Fatalf("PUT = %d %s", w.Code, w.Body.String())
	}

	w := serve(r, http.MethodGet, "/api/v2/documents/hb/search?q=grace", "")
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d %s", w.Code, w.Body.String())
	}
	var sr struct {
		Results []struct {
			ID    string   `json:"id"`
			Lines []string `json:"lines"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sr.Results) != 1 || sr.Results[0].ID != "1" || sr.Results[0].Lines[0] != "Amazing grace" {
		t.Fatalf("unexpected results: %+v", sr.Results)
	}

	if w := serve(r, http.MethodGet, "/api/v2/documents/hb/categories/topic", ""); w.Code != http.StatusOK {
		t.Fatalf("categories = %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/api/v2/documents/hb/selections/topic", `{"op":"select","ids":["A"]}`); w.Code != http.StatusOK {
		t.Fatalf("apply selection = %d %s", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodDelete, "/api/v2/documents/hb", ""); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/v1/documents", ""); w.Code != http.StatusNotFound {
		t.Fatalf("old base path should not be mounted, got %d", w.Code)
	}

	// route templates, not raw ids, become metric labels
	w = serve(r, http.MethodGet, "/metrics", "")
	if !strings.Contains(w.Body.String(), `route="/api/v2/documents/:id/search"`) {
		t.Fatalf("expected templated route label in metrics")
	}
}

func TestRegisterRoutes_RateLimitSkipsHealth(t *testing.T) {
	cfg := baseConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r := newRouter(t, cfg)

	if w := serve(r, http.MethodGet, "/api/v1/documents", "", "X-Client-ID", "a"); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/api/v1/documents", "", "X-Client-ID", "a")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("second request = %d", w.Code)
	}
	// another client has its own bucket
	if w := serve(r, http.MethodGet, "/api/v1/documents", "", "X-Client-ID", "b"); w.Code != http.StatusOK {
		t.Fatalf("other client = %d", w.Code)
	}
	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodGet, "/health", "", "X-Client-ID", "a"); w.Code != http.StatusOK {
			t.Fatalf("/health must not be limited, got %d", w.Code)
		}
	}
}

func TestRegisterRoutes_GzipAndBodyLimit(t *testing.T) {
	cfg := baseConfig()
	cfg.Catalog.MaxDocumentBytes = 64
	r := newRouter(t, cfg)

	w := serve(r, http.MethodGet, "/api/v1/documents", "", "Accept-Encoding", "gzip")
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, headers=%v", w.Header())
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, _ := io.ReadAll(zr)
	if !bytes.Contains(body, []byte(`"documents"`)) {
		t.Fatalf("unexpected body: %s", body)
	}

	big := strings.Repeat("x", 64+bodySlack+1)
	if w := serve(r, http.MethodPut, "/api/v1/documents/hb", big); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized PUT = %d", w.Code)
	}
}

func TestRegisterRoutes_SwaggerEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.SwaggerEnabled = true
	r := newRouter(t, cfg)

	if w := serve(r, http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusOK {
		t.Fatalf("swagger index = %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"/documents/{id}/search"`) {
		t.Fatalf("swagger doc = %d", w.Code)
	}
}

func TestPipeline_SecurityHeaders(t *testing.T) {
	cfg := baseConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	r := newRouter(t, cfg)

	w := serve(r, http.MethodGet, "/health", "", "X-Forwarded-Proto", "https")
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected nosniff, headers=%v", w.Header())
	}
	if got := w.Header().Get("Strict-Transport-Security"); !strings.Contains(got, "max-age=3600") {
		t.Fatalf("HSTS = %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	if w := serve(r, http.MethodPost, "/echo", "0123456789AB"); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/echo", "0123"); w.Code != http.StatusOK {
		t.Fatalf("small body = %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}
