package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock AI provider for testing. It is safe for concurrent use.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Errors       map[string]error  // Map of source text to a simulated failure

	mu       sync.Mutex
	requests []TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":       "Bonjour",
			"World":       "Monde",
			"Hello World": "Bonjour le monde",
			"Open":        "Ouvrir",
			"Save":        "Enregistrer",
			"Cancel":      "Annuler",
		},
		Errors: map[string]error{},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := m.Errors[req.Text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text), nil
}

// CallCount returns the number of times Translate was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of all requests received, in call order.
func (m *MockProvider) Requests() []TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranslateRequest(nil), m.requests...)
}

// Reset clears recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)
