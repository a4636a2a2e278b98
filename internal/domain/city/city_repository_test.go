package city

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/worldwise-api/internal/domain/city/citytest"
	"github.com/FACorreiaa/worldwise-api/internal/types"
	"github.com/FACorreiaa/worldwise-api/pkg/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepository(t *testing.T, baseURL string) *RepositoryImpl {
	t.Helper()
	repo, err := NewCityRepository(RepositoryConfig{
		BaseURL: baseURL,
		Metrics: observability.NewMetrics(prometheus.NewRegistry()),
	}, discardLogger())
	require.NoError(t, err)
	return repo
}

func TestNewCityRepository_RequiresBaseURL(t *testing.T) {
	_, err := NewCityRepository(RepositoryConfig{}, discardLogger())
	assert.Error(t, err)
}

func TestRepository_GetAllCities(t *testing.T) {
	store := citytest.NewStore(t, paris, lisbon)
	repo := newTestRepository(t, store.URL()+"/")

	cities, err := repo.GetAllCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.City{paris, lisbon}, cities)
	assert.Equal(t, 1, store.Hits(http.MethodGet, "/cities"))
}

func TestRepository_GetAllCities_DateOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"cityName":"Paris","country":"France","emoji":"🇫🇷","date":"2027-10-31","notes":"","position":{"lat":48.85,"lng":2.35}}]`))
	}))
	t.Cleanup(srv.Close)

	c := NewContainer(newTestRepository(t, srv.URL), discardLogger())
	c.LoadAll(context.Background())

	s := c.Snapshot()
	assert.Equal(t, "", s.Error)
	require.Len(t, s.Cities, 1)
	assert.Equal(t, "2027-10-31", s.Cities[0].Date)
}

func TestRepository_GetCity(t *testing.T) {
	store := citytest.NewStore(t, paris, rome)
	repo := newTestRepository(t, store.URL())
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		city, err := repo.GetCity(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, rome, *city)
		assert.Equal(t, 1, store.Hits(http.MethodGet, "/cities/7"))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetCity(ctx, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Contains(t, err.Error(), "failed to fetch city 99")
	})
}

func TestRepository_CreateCity(t *testing.T) {
	store := citytest.NewStore(t, paris)
	repo := newTestRepository(t, store.URL())

	params := types.CreateCityParams{
		CityName: "Rome",
		Country:  "Italy",
		Emoji:    "🇮🇹",
		Date:     "2024-05-01T12:00:00Z",
		Notes:    "Pasta",
		Position: types.Position{Lat: 41.9, Lng: 12.5},
	}

	city, err := repo.CreateCity(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, types.CityID(2), city.ID)
	assert.Equal(t, "Rome", city.CityName)
	assert.Equal(t, params.Position, city.Position)
	assert.Equal(t, params.Date, city.Date)
	assert.Len(t, store.Cities(), 2)
}

func TestRepository_CreateCity_SendsJSON(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"7","cityName":"Rome"}`))
	}))
	defer srv.Close()

	repo := newTestRepository(t, srv.URL)
	city, err := repo.CreateCity(context.Background(), types.CreateCityParams{CityName: "Rome"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Rome", gotBody["cityName"])
	assert.NotContains(t, gotBody, "id")
	assert.NotContains(t, gotBody, "date")
	assert.Equal(t, types.CityID(7), city.ID)
}

func TestRepository_DeleteCity(t *testing.T) {
	store := citytest.NewStore(t, paris, rome)
	repo := newTestRepository(t, store.URL())
	ctx := context.Background()

	require.NoError(t, repo.DeleteCity(ctx, 7))
	assert.Equal(t, []types.City{paris}, store.Cities())

	err := repo.DeleteCity(ctx, 7)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRepository_DeleteCity_IgnoresBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cities/3", r.URL.Path)
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	repo := newTestRepository(t, srv.URL)
	assert.NoError(t, repo.DeleteCity(context.Background(), 3))
}

func TestRepository_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("server error", func(t *testing.T) {
		store := citytest.NewStore(t, paris)
		store.SetFailing(true)
		repo := newTestRepository(t, store.URL())

		_, err := repo.GetAllCities(ctx)
		assert.ErrorIs(t, err, types.ErrStoreUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		store := citytest.NewStore(t)
		repo := newTestRepository(t, store.URL())
		store.Close()

		_, err := repo.GetAllCities(ctx)
		assert.ErrorIs(t, err, types.ErrStoreUnavailable)
	})

	t.Run("invalid json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":`))
		}))
		defer srv.Close()
		repo := newTestRepository(t, srv.URL)

		_, err := repo.GetAllCities(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("conflict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "duplicate", http.StatusConflict)
		}))
		defer srv.Close()
		repo := newTestRepository(t, srv.URL)

		_, err := repo.CreateCity(ctx, types.CreateCityParams{CityName: "Rome"})
		assert.ErrorIs(t, err, types.ErrConflict)
	})
}
