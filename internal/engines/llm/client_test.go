package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 1 {
			t.Errorf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"[{\"startIndex\":0}]"}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", "test-model")
	reply, err := c.Complete(context.Background(), "rank these lines")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(reply, "startIndex") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestComplete_non_2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", "m")
	if _, err := c.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 429")
	} else if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should mention status, got %v", err)
	}
}

func TestComplete_no_choices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", "m")
	if _, err := c.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`[1,2]`, `[1,2]`},
		{"```json\n[1,2]\n```", `[1,2]`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  \n```json\n[]\n```\n", `[]`},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
