package provider

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xamlai"
	"github.com/ZaguanLabs/xamlai/internal/fakeopenai"
	"github.com/sashabaranov/go-openai"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	prompt := p.buildSystemPrompt(TranslateRequest{TargetLang: "French"})
	if prompt != "You are an expert English to French translator." {
		t.Errorf("unexpected prompt: %q", prompt)
	}

	prompt = p.buildSystemPrompt(TranslateRequest{SourceLang: "German", TargetLang: "Dutch"})
	if !strings.Contains(prompt, "German to Dutch") {
		t.Errorf("prompt should name both languages, got: %q", prompt)
	}
}

func TestBuildUserMessage(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	msg := p.buildUserMessage(TranslateRequest{Text: "Hello World"})
	if msg != "Translate: Hello World" {
		t.Errorf("unexpected user message: %q", msg)
	}
}

func TestNewOpenAIProvider_DefaultModel(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})
	if p.Model() != DefaultOpenAIModel {
		t.Errorf("expected default model %q, got %q", DefaultOpenAIModel, p.Model())
	}

	p = NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o-mini"})
	if p.Model() != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %q", p.Model())
	}
}

func TestOpenAIProvider_Translate(t *testing.T) {
	srv := fakeopenai.New(t, map[string]string{"Hello": "Bonjour"})
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.BaseURL()})

	got, err := p.Translate(context.Background(), TranslateRequest{
		Text:       "Hello",
		SourceLang: "English",
		TargetLang: "French",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("expected trimmed 'Bonjour', got %q", got)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Model != DefaultOpenAIModel {
		t.Errorf("expected model %q, got %q", DefaultOpenAIModel, reqs[0].Model)
	}
	if len(reqs[0].Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(reqs[0].Messages))
	}
	if reqs[0].Messages[0].Role != openai.ChatMessageRoleSystem ||
		reqs[0].Messages[0].Content != "You are an expert English to French translator." {
		t.Errorf("unexpected system message: %+v", reqs[0].Messages[0])
	}
	if reqs[0].Messages[1].Content != "Translate: Hello" {
		t.Errorf("unexpected user message: %q", reqs[0].Messages[1].Content)
	}
}

func TestOpenAIProvider_TranslateServerError(t *testing.T) {
	srv := fakeopenai.New(t, map[string]string{})
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.BaseURL()})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "Open", TargetLang: "French"})
	if err == nil {
		t.Fatal("expected error for server failure")
	}

	var providerErr *xamlai.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if !providerErr.Retryable {
		t.Error("5xx errors should be marked retryable")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&openai.APIError{HTTPStatusCode: 429}, true},
		{&openai.APIError{HTTPStatusCode: 503}, true},
		{&openai.APIError{HTTPStatusCode: 401}, false},
		{&openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()
	m.Errors["Broken"] = errors.New("network down")

	got, err := m.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "French"})
	if err != nil {
		t.Fatalf("MockProvider.Translate failed: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("Expected 'Bonjour', got %q", got)
	}

	got, _ = m.Translate(context.Background(), TranslateRequest{Text: "Unknown text"})
	if got != "[Unknown text]" {
		t.Errorf("Expected '[Unknown text]', got %q", got)
	}

	if _, err := m.Translate(context.Background(), TranslateRequest{Text: "Broken"}); err == nil {
		t.Error("Expected simulated error")
	}

	if m.CallCount() != 3 {
		t.Errorf("Expected CallCount 3, got %d", m.CallCount())
	}

	m.Reset()
	if m.CallCount() != 0 {
		t.Errorf("Expected CallCount 0 after Reset, got %d", m.CallCount())
	}
}
