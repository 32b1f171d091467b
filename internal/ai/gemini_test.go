package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", "test-model")
	c.baseURL = srv.URL
	return c
}

func TestChat(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("missing api key header")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{{Content: content{Parts: []part{{Text: "hi there"}}}}},
		})
	})

	reply, err := c.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestChatAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "key not valid"}}`))
	})

	if _, err := c.Chat(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from API failure")
	}
}

func TestGenerateImage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{{Content: content{Parts: []part{
				{InlineData: &inlineData{MimeType: "image/png", Data: "aGk="}},
			}}}},
		})
	})

	data, mime, err := c.GenerateImage(context.Background(), "a chart", "1K")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if data != "aGk=" || mime != "image/png" {
		t.Fatalf("got %q %q", data, mime)
	}
}

func TestEnabled(t *testing.T) {
	if NewClient("", "m").Enabled() {
		t.Error("client without key should be disabled")
	}
	if !NewClient("k", "m").Enabled() {
		t.Error("client with key should be enabled")
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Error("nil client should be disabled")
	}
}
