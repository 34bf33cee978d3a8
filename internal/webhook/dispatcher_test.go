package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/secretwatch/expiry-tracker/internal/teams"
	"github.com/secretwatch/expiry-tracker/internal/webhook"
)

func card() *teams.Message {
	return teams.Render("Acme", nil, time.Now(), "http://localhost:3000")
}

func TestHTTPDispatcher_Success(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := webhook.NewHTTPDispatcher(5 * time.Second)
	outcome := d.Deliver(context.Background(), srv.URL, card())

	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if received["@type"] != "MessageCard" {
		t.Fatalf("server did not receive a MessageCard: %v", received)
	}
}

// Teams returns various 2xx codes depending on the connector; all count.
func TestHTTPDispatcher_AnyTwoHundredIsSuccess(t *testing.T) {
	for _, status := range []int{200, 201, 202, 204} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		d := webhook.NewHTTPDispatcher(5 * time.Second)
		outcome := d.Deliver(context.Background(), srv.URL, card())
		srv.Close()

		if !outcome.Success || outcome.Status != status {
			t.Fatalf("status %d: expected success, got %+v", status, outcome)
		}
	}
}

func TestHTTPDispatcher_NonTwoHundredIsFailure(t *testing.T) {
	for _, status := range []int{400, 404, 429, 500} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		d := webhook.NewHTTPDispatcher(5 * time.Second)
		outcome := d.Deliver(context.Background(), srv.URL, card())
		srv.Close()

		if outcome.Success {
			t.Fatalf("status %d: expected failure", status)
		}
		if outcome.Status != status {
			t.Fatalf("expected status %d recorded, got %d", status, outcome.Status)
		}
	}
}

func TestHTTPDispatcher_UnreachableHost(t *testing.T) {
	d := webhook.NewHTTPDispatcher(time.Second)
	outcome := d.Deliver(context.Background(), "http://127.0.0.1:1", card())

	if outcome.Success {
		t.Fatal("expected failure for unreachable host")
	}
	if outcome.Err == nil {
		t.Fatal("expected transport error to be captured in the outcome")
	}
}

func TestHTTPDispatcher_MalformedURL(t *testing.T) {
	d := webhook.NewHTTPDispatcher(time.Second)
	outcome := d.Deliver(context.Background(), "://not-a-url", card())

	if outcome.Success {
		t.Fatal("expected failure for malformed URL")
	}
	if outcome.Err == nil {
		t.Fatal("expected error to be captured, not propagated")
	}
}
