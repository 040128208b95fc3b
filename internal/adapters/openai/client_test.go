package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "A leafy historic quarter."}}},
		})
	}))
	defer srv.Close()

	c := New("key-123", "", srv.URL)
	text, err := c.Generate(context.Background(), "You are a guide.", "Describe Greenwich Village.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "A leafy historic quarter." {
		t.Errorf("unexpected reply %q", text)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	c := New("key-123", "", srv.URL)
	if _, err := c.Generate(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}
