package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newGeocodeServer(t *testing.T, status string, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("components"); got != "country:ES" {
			t.Errorf("components = %q, want country:ES", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if body != "" {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte(`{"status":"` + status + `","results":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCityCenter(t *testing.T) {
	srv := newGeocodeServer(t, "", `{
		"status": "OK",
		"results": [{"geometry": {"location": {"lat": 40.4168, "lng": -3.7038}}}]
	}`)

	g := NewGoogle(srv.URL, "test-key", "ES", 5*time.Second)
	p, err := g.CityCenter(context.Background(), "Madrid")
	if err != nil {
		t.Fatal(err)
	}
	if p.Lat != 40.4168 || p.Lng != -3.7038 {
		t.Errorf("point = %+v, want Madrid center", p)
	}
}

func TestZoneCenterAddressForm(t *testing.T) {
	var gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":1,"lng":2}}}]}`))
	}))
	defer srv.Close()

	g := NewGoogle(srv.URL, "k", "ES", 5*time.Second)
	if _, err := g.ZoneCenter(context.Background(), "Malasaña", "Madrid"); err != nil {
		t.Fatal(err)
	}
	if gotAddress != "zona Malasaña, Madrid" {
		t.Errorf("address = %q, want zona Malasaña, Madrid", gotAddress)
	}
}

func TestCityCenterZeroResults(t *testing.T) {
	srv := newGeocodeServer(t, "ZERO_RESULTS", "")

	g := NewGoogle(srv.URL, "test-key", "ES", 5*time.Second)
	_, err := g.CityCenter(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCityCenterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGoogle(srv.URL, "test-key", "ES", 5*time.Second)
	_, err := g.CityCenter(context.Background(), "Madrid")
	if err == nil {
		t.Fatal("expected error on 500 upstream")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("transport error must not map to ErrNotFound")
	}
}

func TestCityCenterDeniedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","results":[{"geometry":{"location":{"lat":1,"lng":2}}}]}`))
	}))
	defer srv.Close()

	g := NewGoogle(srv.URL, "bad-key", "", 5*time.Second)
	_, err := g.CityCenter(context.Background(), "Madrid")
	if err == nil {
		t.Fatal("expected error on REQUEST_DENIED")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("REQUEST_DENIED must not map to ErrNotFound")
	}
}
