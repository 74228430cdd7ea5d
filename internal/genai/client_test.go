package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		ReplyModel: "reply-model",
		ImageModel: "image-model",
	})
}

func TestGenerateReply(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": "度量"},
						{"text": "即存在。"},
					},
				}},
			},
		})
	})

	reply, err := client.GenerateReply(context.Background(), "你是什么？", "你是弗洛斯特。", 0.8)
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}

	if reply != "度量即存在。" {
		t.Errorf("expected concatenated parts, got %q", reply)
	}
	if gotPath != "/models/reply-model:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "你是弗洛斯特。" {
		t.Error("system instructions not forwarded")
	}
	if gotReq.GenerationConfig == nil || gotReq.GenerationConfig.Temperature == nil ||
		*gotReq.GenerationConfig.Temperature != 0.8 {
		t.Error("temperature not forwarded")
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "你是什么？" {
		t.Error("prompt not forwarded")
	}
}

func TestGenerateReplyEmptyCandidatesIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	reply, err := client.GenerateReply(context.Background(), "prompt", "", 0.5)
	if err != nil {
		t.Fatalf("expected success for empty candidates, got %v", err)
	}
	if reply != "" {
		t.Errorf("expected empty reply, got %q", reply)
	}
}

func TestGenerateReplyServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := client.GenerateReply(context.Background(), "prompt", "", 0.5)
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestGenerateReplyRespectsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GenerateReply(ctx, "prompt", "", 0.5); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestGenerateImage(t *testing.T) {
	var gotPath string
	var gotReq generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": "a caption"},
						{"inlineData": map[string]interface{}{"mimeType": "image/png", "data": "aW1nYnl0ZXM="}},
					},
				}},
			},
		})
	})

	b64, err := client.GenerateImage(context.Background(), "frozen pole")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}

	if b64 != "aW1nYnl0ZXM=" {
		t.Errorf("expected inline data, got %q", b64)
	}
	if gotPath != "/models/image-model:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotReq.GenerationConfig == nil || len(gotReq.GenerationConfig.ResponseModalities) != 2 {
		t.Error("response modalities not requested")
	}
}

func TestGenerateImageWithoutDataIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": "only text"}},
				}},
			},
		})
	})

	if _, err := client.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Error("expected error when no image data returned")
	}
}

func TestGenerateWithoutModelIsError(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	if _, err := client.GenerateReply(context.Background(), "prompt", "", 0.5); err == nil {
		t.Error("expected error when no model configured")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := truncate("0123456789", 4); got != "0123..." {
		t.Errorf("expected truncated string, got %q", got)
	}
}
