// Package citytest provides an in-memory remote city store for tests.
package citytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/FACorreiaa/worldwise-api/internal/types"
)

// Store mimics the REST city store: GET/POST /cities, GET/DELETE /cities/{id}.
type Store struct {
	server *httptest.Server

	mu      sync.Mutex
	cities  []types.City
	nextID  types.CityID
	hits    map[string]int
	failing bool
}

// NewStore starts a store seeded with cities. It is closed when the test ends.
func NewStore(t testing.TB, seed ...types.City) *Store {
	t.Helper()

	s := &Store{
		cities: slices.Clone(seed),
		nextID: 1,
		hits:   make(map[string]int),
	}
	for _, c := range seed {
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /cities", s.list)
	mux.HandleFunc("POST /cities", s.create)
	mux.HandleFunc("GET /cities/{id}", s.get)
	mux.HandleFunc("DELETE /cities/{id}", s.delete)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		failing := s.failing
		s.mu.Unlock()

		if failing {
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.server.Close)

	return s
}

// URL is the base address to configure the repository with.
func (s *Store) URL() string { return s.server.URL }

// Close stops the server; later requests fail at the transport level.
func (s *Store) Close() { s.server.Close() }

// SetFailing makes every request answer 500.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Hits returns how many requests matched method and path, e.g. Hits("GET", "/cities/7").
func (s *Store) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// Cities returns the cities currently stored.
func (s *Store) Cities() []types.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cities)
}

func (s *Store) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cities := slices.Clone(s.cities)
	s.mu.Unlock()
	if cities == nil {
		cities = []types.City{}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (s *Store) get(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseCityID(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.cities, func(c types.City) bool { return c.ID == id })
	if i < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.cities[i])
}

func (s *Store) create(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "expected application/json", http.StatusUnsupportedMediaType)
		return
	}
	var params types.CreateCityParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	city := types.City{
		ID:       s.nextID,
		CityName: params.CityName,
		Country:  params.Country,
		Emoji:    params.Emoji,
		Date:     params.Date,
		Notes:    params.Notes,
		Position: params.Position,
	}
	s.nextID++
	s.cities = append(s.cities, city)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, city)
}

func (s *Store) delete(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseCityID(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.cities)
	s.cities = slices.DeleteFunc(s.cities, func(c types.City) bool { return c.ID == id })
	if len(s.cities) == before {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
