package firstworld_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelsync/internal/config"
	"reelsync/internal/firstworld"
)

func newOMDbClient(t *testing.T, handler http.HandlerFunc) *firstworld.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default().OMDb
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL + "/"
	return firstworld.NewClient(cfg, firstworld.WithHTTPClient(server.Client()))
}

func TestCountriesReturnsList(t *testing.T) {
	client := newOMDbClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("missing api key in query: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("i") != "tt0000100" {
			t.Errorf("unexpected title code: %s", r.URL.Query().Get("i"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Response":"True","Country":"United States, United Kingdom"}`))
	})

	countries, err := client.Countries(context.Background(), "tt0000100")
	if err != nil {
		t.Fatalf("Countries failed: %v", err)
	}
	if countries != "United States, United Kingdom" {
		t.Fatalf("unexpected country list: %q", countries)
	}
}

func TestCountriesAPIFailure(t *testing.T) {
	client := newOMDbClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})

	_, err := client.Countries(context.Background(), "tt9999999")
	if !errors.Is(err, firstworld.ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
}

func TestCountriesBadStatus(t *testing.T) {
	client := newOMDbClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Countries(context.Background(), "tt0000100")
	if !errors.Is(err, firstworld.ErrLookup) {
		t.Fatalf("expected ErrLookup, got %v", err)
	}
}
