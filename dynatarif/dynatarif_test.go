package dynatarif

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/tokens/" && r.Method == http.MethodPost:
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parsing login form: %v", err)
			}
			if r.PostForm.Get("grant_type") != "password" {
				t.Errorf("expected password grant, got %q", r.PostForm.Get("grant_type"))
			}
			if r.PostForm.Get("username") != "someone@example.com" {
				t.Errorf("unexpected username %q", r.PostForm.Get("username"))
			}
			w.Write([]byte(`{"access_token": "test-token", "token_type": "bearer"}`))

		case r.URL.Path == "/users/me/":
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected authorization header %q", got)
			}
			w.Write([]byte(`{"contracts": [{"contract_id": "c-123"}]}`))

		case r.URL.Path == "/tariffs/prognosis":
			q := r.URL.Query()
			if q.Get("contract_id") != "c-123" {
				t.Errorf("unexpected contract id %q", q.Get("contract_id"))
			}
			if q.Get("sort") != "valid_from:asc" {
				t.Errorf("unexpected sort %q", q.Get("sort"))
			}
			if got := len(q["filters"]); got != 2 {
				t.Errorf("expected 2 filters, got %d", got)
			}
			w.Write([]byte(`{"data": [
				{"start": "2025-01-15T00:00:00+01:00", "end": "2025-01-15T00:15:00+01:00", "price_ct_kwh": 23.41},
				{"start": "2025-01-15T00:15:00+01:00", "end": "2025-01-15T00:30:00+01:00", "price_ct_kwh": 22.876}
			]}`))

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "someone@example.com", "secret")
	series, err := client.GetPrices(context.Background())
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("got %d samples, wanted 2", len(series))
	}
	if series[0].PriceCtKWh != 23.41 {
		t.Errorf("got price %f, wanted 23.41", series[0].PriceCtKWh)
	}
	wantStart := time.Date(2025, 1, 14, 23, 0, 0, 0, time.UTC)
	if !series[0].Start.Equal(wantStart) {
		t.Errorf("got start %v, wanted %v", series[0].Start, wantStart)
	}
	if !series[0].End.Equal(series[1].Start) {
		t.Error("expected contiguous samples")
	}
}

func TestLoginFailsWithoutContracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokens/":
			w.Write([]byte(`{"access_token": "test-token"}`))
		case "/users/me/":
			w.Write([]byte(`{"contracts": []}`))
		}
	}))
	defer srv.Close()

	client := New(srv.URL, "someone@example.com", "secret")
	if err := client.Login(context.Background()); err == nil {
		t.Error("expected error for account without contracts")
	}
}
