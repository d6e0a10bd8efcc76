// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steamybeans/api/internal/config"
	"github.com/steamybeans/api/internal/health"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGreetingWithoutBundle(t *testing.T) {
	srv := New(Config{StaticDir: filepath.Join(t.TempDir(), "missing")})
	srv.MountFrontend()

	rec := get(t, srv.Router(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())

	rec = get(t, srv.Router(), "/some/route")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFrontendBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o600))

	srv := New(Config{StaticDir: dir})
	srv.Router().Get("/alluser", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("api"))
	})
	srv.MountFrontend()

	rec := get(t, srv.Router(), "/assets/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = get(t, srv.Router(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = get(t, srv.Router(), "/menu/latte")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html>app</html>")

	rec = get(t, srv.Router(), "/alluser")
	assert.Equal(t, "api", rec.Body.String())
}

func TestRecoversFromPanic(t *testing.T) {
	srv := New(Config{})
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := get(t, srv.Router(), "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdownMarksHealthDraining(t *testing.T) {
	hh := health.NewHandler()
	srv := New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: hh,
	})
	hh.RegisterRoutes(srv.Router())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx, 0))

	rec := get(t, srv.Router(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
