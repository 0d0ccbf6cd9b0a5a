package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/heimdex/heimdex-turnover/internal/catalog"
	"github.com/heimdex/heimdex-turnover/internal/db"
)

const testToken = "test-token-123"

const sampleEDL = "TITLE: REEL1\nFCM: NON-DROP FRAME\n\n" +
	"001  A001C001 V     C        01:00:00:10 01:00:01:10 01:00:00:00 01:00:01:00\n" +
	"002  B001C002 V     C        05:00:00:00 05:00:02:00 01:00:01:00 01:00:03:00\n"

const sampleALE = "Heading\nFIELD_DELIM\tTABS\nVIDEO_FORMAT\t1080\nFPS\t24\n\n" +
	"Column\nName\tStart\tEnd\tCamera\tScene\n\n" +
	"Data\n" +
	"A001C001.mov\t01:00:00:00\t01:00:02:00\tA\t12\n" +
	"C001C001.mov\t07:00:00:00\t07:00:01:00\tC\t14\n"

type testEnv struct {
	cfg     ServerConfig
	service *catalog.Service
	repo    catalog.Repository
	router  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := catalog.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), "auth_token", testToken); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	svc := catalog.NewService(repo, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := ServerConfig{
		CatalogService:   svc,
		Repository:       repo,
		Runner:           catalog.NewRunner(svc, repo, logger),
		Logger:           logger,
		StartTime:        time.Now(),
		DeviceID:         "test-device",
		Version:          "1.2.3",
		DefaultProjectID: "default",
	}
	return &testEnv{cfg: cfg, service: svc, repo: repo, router: NewRouter(cfg)}
}

// do sends an authenticated request through the full router.
func (e *testEnv) do(t *testing.T, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "127.0.0.1:50000"
	req.Header.Set("Authorization", "Bearer "+testToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) postJSON(t *testing.T, target string, v any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	return e.do(t, http.MethodPost, target, "application/json", strings.NewReader(string(data)))
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON body: %v", err)
	}
	return body
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON body: %v", err)
	}
}
