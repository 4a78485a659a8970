package provider

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"github.com/ZaguanLabs/xamlai"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleProvider implements AIProvider using Google Cloud Translation.
type GoogleProvider struct {
	client *translate.Client
}

// GoogleConfig holds configuration for the Google provider.
// When both fields are empty, Application Default Credentials are used.
type GoogleConfig struct {
	APIKey          string
	CredentialsFile string
}

// NewGoogleProvider creates a new Google Cloud Translation provider.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	opts := []option.ClientOption{option.WithUserAgent(xamlai.UserAgent())}
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating translate client: %w", err)
	}

	return &GoogleProvider{client: client}, nil
}

// Translate translates one text. Google works with language codes, so
// req.TargetCode must be set.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	target, err := language.Parse(req.TargetCode)
	if err != nil {
		return "", &xamlai.ProviderError{
			Message: fmt.Sprintf("invalid target language code %q", req.TargetCode),
			Cause:   err,
		}
	}

	opts := &translate.Options{Format: translate.Text}
	if req.SourceCode != "" {
		if source, err := language.Parse(req.SourceCode); err == nil {
			opts.Source = source
		}
	}

	translations, err := p.client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return "", &xamlai.ProviderError{
			Message: "Google Translate call failed",
			Cause:   err,
		}
	}

	if len(translations) == 0 {
		return "", &xamlai.ProviderError{Message: "no translation returned"}
	}

	return translations[0].Text, nil
}

// Close releases the underlying client.
func (p *GoogleProvider) Close() error {
	return p.client.Close()
}

// Verify GoogleProvider implements AIProvider
var _ AIProvider = (*GoogleProvider)(nil)
