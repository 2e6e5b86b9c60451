package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartpark/core/factory"
	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/prediction"
)

func forecastServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v42"`)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		if r.Method == http.MethodHead {
			return
		}
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		n, err := strconv.Atoi(r.URL.Query().Get("horizon_hours"))
		assert.NoError(t, err)
		resp := forecastResponse{Version: "v42"}
		for i := 0; i < n+2; i++ {
			resp.Points = append(resp.Points, model.ForecastPoint{
				Timestamp:      base.Add(time.Duration(i) * time.Hour),
				PredictedValue: float64(i),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProvider_Predict(t *testing.T) {
	srv := forecastServer(t, http.StatusOK)
	p, err := NewHTTPProvider(HTTPConfig{URL: srv.URL, Token: "secret"})
	require.NoError(t, err)

	pts, err := p.Predict(context.Background(), 24)
	require.NoError(t, err)
	require.Len(t, pts, 24)
	assert.Equal(t, 23.0, pts[23].PredictedValue)
	assert.True(t, pts[1].Timestamp.Equal(time.Date(2024, time.January, 1, 1, 0, 0, 0, time.UTC)))

	v, err := p.DataVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v42", v)
}

func TestHTTPProvider_Unavailable(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusServiceUnavailable} {
		srv := forecastServer(t, code)
		p, err := NewHTTPProvider(HTTPConfig{URL: srv.URL})
		require.NoError(t, err)
		_, err = p.Predict(context.Background(), 24)
		assert.ErrorIs(t, err, prediction.ErrModelUnavailable)
		_, err = p.DataVersion(context.Background())
		assert.ErrorIs(t, err, prediction.ErrModelUnavailable)
	}
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := forecastServer(t, http.StatusInternalServerError)
	p, err := NewHTTPProvider(HTTPConfig{URL: srv.URL})
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), 24)
	require.Error(t, err)
	assert.NotErrorIs(t, err, prediction.ErrModelUnavailable)
}

func TestHTTPProvider_Validation(t *testing.T) {
	_, err := NewHTTPProvider(HTTPConfig{})
	assert.Error(t, err)
	p, err := NewHTTPProvider(HTTPConfig{URL: "http://localhost"})
	require.NoError(t, err)
	_, err = p.Predict(context.Background(), 0)
	assert.Error(t, err)
}

func TestFactory_Providers(t *testing.T) {
	p, err := prediction.NewProvider(factory.ModuleConfig{Type: "http", Conf: map[string]any{
		"url": "http://localhost:9000/forecast", "timeout": "2s",
	}})
	require.NoError(t, err)
	assert.IsType(t, &HTTPProvider{}, p)

	_, err = prediction.NewProvider(factory.ModuleConfig{Type: "seasonal"})
	assert.Error(t, err)

	sp, err := prediction.NewProvider(factory.ModuleConfig{Type: "seasonal", Conf: map[string]any{
		"path": t.TempDir() + "/models.db",
	}})
	require.NoError(t, err)
	_, err = sp.Predict(context.Background(), 24)
	assert.ErrorIs(t, err, prediction.ErrModelUnavailable)

	mp, err := prediction.NewProvider(factory.ModuleConfig{Type: "mock", Conf: map[string]any{"seed": "7"}})
	require.NoError(t, err)
	pts, err := mp.Predict(context.Background(), 168)
	require.NoError(t, err)
	assert.Len(t, pts, 168)
	v, err := mp.(prediction.Versioned).DataVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mock-seed-7", v)
}

func TestNewMockProvider(t *testing.T) {
	now := time.Date(2024, time.January, 3, 10, 30, 0, 0, time.UTC)
	p, err := NewMockProvider(MockConfig{Seed: 3, Timezone: "Europe/Paris"}, now)
	require.NoError(t, err)
	pts, err := p.Predict(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 11, pts[0].Timestamp.Hour())
	assert.Equal(t, "Europe/Paris", pts[0].Timestamp.Location().String())

	u, err := NewMockProvider(MockConfig{Unavailable: true}, now)
	require.NoError(t, err)
	_, err = u.Predict(context.Background(), 24)
	assert.ErrorIs(t, err, prediction.ErrModelUnavailable)

	_, err = NewMockProvider(MockConfig{Timezone: "Nowhere/City"}, now)
	assert.Error(t, err)
}
