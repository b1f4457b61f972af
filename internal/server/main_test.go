package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"analytics/internal/config"
	"analytics/internal/service"
	"analytics/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "8000",
		Env:            "test",
		APIPrefix:      "/api",
		DBDriver:       config.DriverSQLite,
		AllowedOrigins: "*",
	}
}

// newTestApp builds the full app over a fresh SQLite database.
func newTestApp(t *testing.T, locator service.GeoLocator) (*fiber.App, *gorm.DB, *testutil.Fixtures) {
	t.Helper()

	db := testutil.NewDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, nil, locator)
	require.NoError(t, err)
	return srv.NewApp(), db, testutil.NewFixtures(t, db)
}

// doJSON sends a request with an optional JSON body and decodes the JSON response into out.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, out interface{}, headers ...string) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func get(t *testing.T, app *fiber.App, path string, out interface{}) int {
	t.Helper()
	return doJSON(t, app, http.MethodGet, path, nil, out)
}
