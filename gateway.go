package xamlai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Gateway wraps a single call to an AI provider.
//
// Failures never reach the caller as errors: the gateway falls back to the
// original, untranslated text and reports the cause in Outcome.Err.
type Gateway struct {
	provider    AIProvider
	sourceLang  Language
	callTimeout time.Duration
	logger      zerolog.Logger
}

// NewGateway creates a gateway translating from sourceLang with the given provider.
// A zero callTimeout leaves the deadline to the caller's context.
func NewGateway(provider AIProvider, sourceLang string, callTimeout time.Duration, logger zerolog.Logger) *Gateway {
	src, ok := LookupLanguage(sourceLang)
	if !ok {
		src = Language{Name: sourceLang}
	}
	return &Gateway{
		provider:    provider,
		sourceLang:  src,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Translate translates text into targetLang, a name or code from Languages.
func (g *Gateway) Translate(ctx context.Context, text, targetLang string) Outcome {
	target, ok := LookupLanguage(targetLang)
	if !ok {
		return Outcome{Text: text, Err: fmt.Errorf("%w: %q", ErrUnsupportedLanguage, targetLang)}
	}
	return g.translate(ctx, text, target)
}

func (g *Gateway) translate(ctx context.Context, text string, target Language) Outcome {
	if strings.TrimSpace(text) == "" {
		return Outcome{Text: text, Err: ErrEmptyText}
	}

	if g.provider == nil {
		return g.fallback(text, target, &ProviderError{Message: "no provider configured"})
	}

	callCtx := ctx
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	translated, err := g.provider.Translate(callCtx, TranslateRequest{
		Text:       text,
		SourceLang: g.sourceLang.Name,
		SourceCode: g.sourceLang.Code,
		TargetLang: target.Name,
		TargetCode: target.Code,
	})
	if err != nil {
		return g.fallback(text, target, err)
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return g.fallback(text, target, &ProviderError{Message: "empty translation returned"})
	}

	return Outcome{Text: translated}
}

func (g *Gateway) fallback(text string, target Language, err error) Outcome {
	g.logger.Warn().
		Err(err).
		Str("target_lang", target.Name).
		Str("text", text).
		Msg("Translation failed, keeping original text")

	return Outcome{Text: text, Err: err}
}

// SourceLang returns the source language.
func (g *Gateway) SourceLang() Language {
	return g.sourceLang
}
