package lms_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/simple-lms/app/analytics"
	"github.com/km-arc/simple-lms/app/content"
	"github.com/km-arc/simple-lms/app/lms"
	"github.com/km-arc/simple-lms/app/settings"
	"github.com/km-arc/simple-lms/framework/app"
	"github.com/km-arc/simple-lms/framework/container"
	"github.com/km-arc/simple-lms/framework/routing"
)

func boot(t *testing.T) *app.Application {
	t.Helper()
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "lms.db"))
	t.Setenv("LOG_LEVEL", "error")

	a, err := app.New(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Register(&lms.Provider{}))
	require.NoError(t, a.Boot())
	return a
}

func serve(a *app.Application, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	return rr
}

func TestProvider_SharedServices(t *testing.T) {
	a := boot(t)

	svc := container.Resolve[*settings.Service](a.Container, "settings")
	assert.Same(t, svc, container.Resolve[*settings.Service](a.Container, container.Key[*settings.Service]()))

	recorder := container.Resolve[*analytics.Recorder](a.Container, container.Key[*analytics.Recorder]())
	assert.Same(t, recorder, container.Resolve[*analytics.Recorder](a.Container, container.Key[*analytics.Recorder]()))

	// Make always builds a fresh instance
	made, err := container.MakeT[*settings.Service](a.Container)
	require.NoError(t, err)
	assert.NotSame(t, svc, made)

	assert.True(t, a.IsResolved(lms.RecoverMiddleware), "router pulled the tagged middleware")
}

func TestProvider_Routes(t *testing.T) {
	a := boot(t)
	ctx := context.Background()

	repo := container.Resolve[*content.Repository](a.Container, container.Key[*content.Repository]())
	require.NoError(t, repo.Create(ctx, &content.Item{Type: content.Course, Title: "Go 101", RequiredTags: []string{"premium"}}))

	assert.Equal(t, http.StatusForbidden, serve(a, http.MethodGet, "/lms/content/course/1", "", nil).Code)
	assert.Equal(t, http.StatusOK,
		serve(a, http.MethodGet, "/lms/content/course/1", "", map[string]string{"X-LMS-User-Tags": "premium"}).Code)

	assert.Equal(t, http.StatusCreated, serve(a, http.MethodPost, "/lms/events", `{"name":"lesson_viewed"}`, nil).Code)

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/admin/settings", "", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		serve(a, http.MethodPost, "/admin/settings", `{"retention_days":"x"}`, nil).Code)
}

func TestProvider_RecoverMiddlewareIsGlobal(t *testing.T) {
	a := boot(t)

	a.Router().Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rr := serve(a, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestProvider_CallRetention(t *testing.T) {
	a := boot(t)
	ctx := context.Background()

	out, err := a.Call(lms.RetentionID, "Run", container.Args{"ctx": ctx, "days": 7})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(0), out[0])
	assert.Nil(t, out[1])

	// days falls back to its declared default, then to the setting
	out, err = a.Call(container.Resolve[*analytics.Retention](a.Container, lms.RetentionID), "Run", container.Args{"ctx": ctx})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out[0])

	_, err = a.Call(lms.RetentionID, "Run", nil)
	assert.ErrorIs(t, err, container.ErrResolution, "ctx cannot be auto-wired")
}

func TestProvider_RouterIsShared(t *testing.T) {
	a := boot(t)
	assert.Same(t, a.Router(), container.Resolve[*routing.Router](a.Container, container.Key[*routing.Router]()))
}
