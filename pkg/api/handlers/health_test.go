package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dirserve/pkg/servedroot"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	assert.Equal(t, "dirserve", data["service"])
	assert.Contains(t, data, "started_at")
	assert.Contains(t, data, "uptime")
	assert.Contains(t, data, "uptime_sec")
}

func TestReadiness_NoRoot_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "served root not configured", resp.Error)
}

func TestReadiness_ListsRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv", 0755))
	require.NoError(t, afero.WriteFile(fs, "/srv/a.txt", []byte("abc"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/srv/b.txt", []byte("hello"), 0644))

	handler := NewHealthHandler(servedroot.New(fs, "/srv", servedroot.WithTransferUnit(512)))
	w := httptest.NewRecorder()

	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "/srv", data["root"])
	assert.EqualValues(t, 2, data["files"])
	assert.EqualValues(t, 8, data["bytes"])
	assert.EqualValues(t, 512, data["transfer_unit"])
}

func TestReadiness_UnavailableRoot_Returns503(t *testing.T) {
	handler := NewHealthHandler(servedroot.New(afero.NewMemMapFs(), "/gone"))
	w := httptest.NewRecorder()

	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, decode(t, w).Error)
}

type failingRoot struct{}

func (failingRoot) List(context.Context) ([]servedroot.Entry, error) {
	return nil, errors.New("disk on fire")
}
func (failingRoot) Path() string      { return "/x" }
func (failingRoot) TransferUnit() int { return 1 }

func TestReadiness_ReportsListError(t *testing.T) {
	handler := NewHealthHandler(failingRoot{})
	w := httptest.NewRecorder()

	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "disk on fire", decode(t, w).Error)
}
