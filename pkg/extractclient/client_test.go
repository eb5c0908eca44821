package extractclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cashtide/wallet-service/internal/domain"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		entries int
		wantErr bool
	}{
		{
			name:    "plain json",
			input:   `{"entries": [{"kind": "expense", "name": "Coffee", "amount": 4.5}]}`,
			entries: 1,
		},
		{
			name:    "fenced json",
			input:   "```json\n{\"entries\": [{\"kind\": \"subscription\", \"name\": \"Streaming\", \"amount\": \"9.99\"}]}\n```",
			entries: 1,
		},
		{
			name:    "bare fence",
			input:   "```\n{\"entries\": []}\n```",
			entries: 0,
		},
		{
			name:    "null entries normalizes to empty",
			input:   `{"entries": null}`,
			entries: 0,
		},
		{
			name:    "prose reply",
			input:   "I could not find any financial information on this page.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParsePayload(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if payload.Entries == nil {
				t.Fatal("expected non-nil entries slice")
			}
			if len(payload.Entries) != tt.entries {
				t.Fatalf("expected %d entries, got %d", tt.entries, len(payload.Entries))
			}
		})
	}
}

func TestParsePayload_AmountAcceptsNumberAndString(t *testing.T) {
	payload, err := ParsePayload(`{"entries": [
		{"kind": "expense", "name": "Numeric", "amount": 12.34},
		{"kind": "expense", "name": "Stringy", "amount": "56.78"}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Entries[0].Amount == nil || payload.Entries[0].Amount.String() != "12.34" {
		t.Fatalf("unexpected numeric amount: %v", payload.Entries[0].Amount)
	}
	if payload.Entries[1].Amount == nil || payload.Entries[1].Amount.String() != "56.78" {
		t.Fatalf("unexpected string amount: %v", payload.Entries[1].Amount)
	}
}

func TestExtract_EmptyModelReplyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates": [{"content": {"parts": [{"text": %q}]}}]}`, "")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	_, err := client.Extract(context.Background(), "page text", "https://example.com")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse for empty part, got %v", err)
	}
}

func TestExtract_HappyPath(t *testing.T) {
	text := "{\"entries\": [{\"kind\": \"subscription\", \"name\": \"Streaming\", \"amount\": \"9.99\", \"currency\": \"USD\"}]}"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates": [{"content": {"parts": [{"text": %q}]}}]}`, text)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	payload, err := client.Extract(context.Background(), "page text", "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(payload.Entries))
	}
	entry := payload.Entries[0]
	if entry.Kind != domain.EntrySubscription || entry.Name != "Streaming" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestExtract_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	_, err := client.Extract(context.Background(), "page text", "https://example.com")
	if err == nil || errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected a non-parse upstream error, got %v", err)
	}
}
