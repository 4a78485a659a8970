// Package fakeopenai serves a minimal chat-completions endpoint for tests.
package fakeopenai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// Server answers chat completions from a fixed table. Texts missing from
// the table get an HTTP 500 error response.
type Server struct {
	*httptest.Server

	translations map[string]string

	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
}

// New starts a server that is closed when the test ends.
// Replies are padded with whitespace, as real models sometimes do.
func New(t testing.TB, translations map[string]string) *Server {
	t.Helper()

	s := &Server{translations: translations}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// BaseURL returns the value to use as the OpenAI client base URL.
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}

// Requests returns the chat requests received so far.
func (s *Server) Requests() []openai.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), s.requests...)
}

// UserTexts returns the source texts received, without the prompt prefix.
func (s *Server) UserTexts() []string {
	var texts []string
	for _, req := range s.Requests() {
		for _, msg := range req.Messages {
			if msg.Role == openai.ChatMessageRoleUser {
				texts = append(texts, strings.TrimPrefix(msg.Content, "Translate: "))
			}
		}
	}
	return texts
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}

	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	var text string
	for _, msg := range req.Messages {
		if msg.Role == openai.ChatMessageRoleUser {
			text = strings.TrimPrefix(msg.Content, "Translate: ")
		}
	}

	w.Header().Set("Content-Type", "application/json")

	translated, ok := s.translations[text]
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "simulated failure for " + text,
				"type":    "server_error",
			},
		})
		return
	}

	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: "  " + translated + "\n",
				},
				FinishReason: openai.FinishReasonStop,
			},
		},
	})
}
