package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/supervisionhq/jarvis/internal/log"
)

func TestTextbeltSend(t *testing.T) {
	var gotPhone, gotMessage, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		gotPhone = r.PostFormValue("phone")
		gotMessage = r.PostFormValue("message")
		gotKey = r.PostFormValue("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client := NewTextbeltClient(srv.URL, "test-key", true, log.NewNop())
	if err := client.Send(context.Background(), "+15550100", "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPhone != "+15550100" {
		t.Errorf("phone = %q", gotPhone)
	}
	if gotMessage != "hello" {
		t.Errorf("message = %q", gotMessage)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}
}

func TestTextbeltSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "error": "Out of quota"}`))
	}))
	defer srv.Close()

	client := NewTextbeltClient(srv.URL, "test-key", true, log.NewNop())
	err := client.Send(context.Background(), "+15550100", "hello")
	if err == nil {
		t.Fatal("expected rejection error")
	}
}

func TestTextbeltSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTextbeltClient(srv.URL, "test-key", true, log.NewNop())
	if err := client.Send(context.Background(), "+15550100", "hello"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestTextbeltDisabledDryRun(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := NewTextbeltClient(srv.URL, "", false, log.NewNop())
	if err := client.Send(context.Background(), "+15550100", "hello"); err != nil {
		t.Fatalf("disabled Send: %v", err)
	}
	if requests != 0 {
		t.Errorf("disabled client made %d requests", requests)
	}
}
