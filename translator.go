package xamlai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Translator is the main translation engine.
type Translator struct {
	targetLang  Language
	knownTarget bool
	sourceLang  string
	provider    AIProvider
	callTimeout time.Duration
	concurrency int
	progress    ProgressFunc
	logger      zerolog.Logger
	processors  map[string]ContentProcessor
	gateway     *Gateway
}

// AIProvider is the interface for AI translation backends.
// One call translates one text.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // Language name, e.g. "English"
	SourceCode string // BCP 47 code, e.g. "en"
	TargetLang string
	TargetCode string
}

// ContentProcessor is the interface for content processing.
//
// Extract returns every candidate node in document order, including nodes
// with empty text. Apply writes translations, keyed by TextNode.ID, back
// into the parsed document and serializes it.
type ContentProcessor interface {
	Extract(content []byte) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) ([]byte, error)
	ContentType() string
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithCallTimeout bounds each provider call. Zero means no per-call deadline.
func WithCallTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		t.callTimeout = d
	}
}

// WithConcurrency sets how many provider calls may be in flight at once.
// Values below 1 mean sequential processing.
func WithConcurrency(n int) TranslatorOption {
	return func(t *Translator) {
		t.concurrency = n
	}
}

// WithProgress sets a callback invoked after each node is processed.
func WithProgress(fn ProgressFunc) TranslatorOption {
	return func(t *Translator) {
		t.progress = fn
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator with the given target language and provider.
// targetLang is a name or code from Languages.
func NewTranslator(targetLang string, provider AIProvider, opts ...TranslatorOption) *Translator {
	target, ok := LookupLanguage(targetLang)
	if !ok {
		target = Language{Name: targetLang}
	}

	t := &Translator{
		targetLang:  target,
		knownTarget: ok,
		sourceLang:  DefaultSourceLang,
		provider:    provider,
		concurrency: 1,
		logger:      zerolog.Nop(),
		processors:  make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.gateway = NewGateway(t.provider, t.sourceLang, t.callTimeout, t.logger)

	return t
}

// Process translates content of the specified type.
//
// It returns ErrNoContent when the content holds no translatable nodes, a
// *ProcessorError when the content cannot be parsed, and the context error
// when ctx is cancelled. Provider failures never abort processing.
func (t *Translator) Process(ctx context.Context, content []byte, contentType string) (*Result, error) {
	if !t.knownTarget {
		return nil, &TranslationError{
			Message: fmt.Sprintf("target language %q", t.targetLang.Name),
			Cause:   ErrUnsupportedLanguage,
		}
	}

	// Get processor
	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	// Extract text nodes
	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, ErrNoContent
	}

	outcomes, err := t.translateNodes(ctx, nodes)
	if err != nil {
		return nil, err
	}

	result := &Result{TotalNodes: len(nodes)}
	translations := make(map[string]string, len(nodes))
	for i, node := range nodes {
		o := outcomes[i]
		switch {
		case node.IsEmpty():
			result.SkippedCount++
		case o.Failed():
			result.FailedCount++
		default:
			translations[node.ID] = o.Text
			result.TranslatedCount++
		}
	}

	// Apply translations
	result.Content, err = processor.Apply(parsed, nodes, translations)
	if err != nil {
		return nil, err
	}

	t.logger.Debug().
		Str("target_lang", t.targetLang.Name).
		Int("total", result.TotalNodes).
		Int("translated", result.TranslatedCount).
		Int("skipped", result.SkippedCount).
		Int("failed", result.FailedCount).
		Msg("Document translated")

	return result, nil
}

// Rewrite is a convenience method for processing XAML content.
func (t *Translator) Rewrite(ctx context.Context, content []byte) (*Result, error) {
	return t.Process(ctx, content, ContentTypeXAML)
}

// TranslateText translates a single free-form text.
func (t *Translator) TranslateText(ctx context.Context, text string) Outcome {
	if !t.knownTarget {
		return Outcome{Text: text, Err: fmt.Errorf("%w: %q", ErrUnsupportedLanguage, t.targetLang.Name)}
	}
	return t.gateway.translate(ctx, text, t.targetLang)
}

// translateNodes calls the gateway once per non-empty node. Outcomes are
// indexed like nodes, so the caller can apply them in document order no
// matter in which order the calls completed.
func (t *Translator) translateNodes(ctx context.Context, nodes []TextNode) ([]Outcome, error) {
	outcomes := make([]Outcome, len(nodes))
	tracker := &progressTracker{total: len(nodes), report: t.progress}

	translateOne := func(i int) {
		if !nodes[i].IsEmpty() {
			outcomes[i] = t.gateway.translate(ctx, nodes[i].Text, t.targetLang)
		} else {
			outcomes[i] = Outcome{Text: nodes[i].Text}
		}
		tracker.advance()
	}

	if t.concurrency <= 1 {
		for i := range nodes {
			if err := ctx.Err(); err != nil {
				return nil, &TranslationError{Message: "translation cancelled", Cause: err}
			}
			translateOne(i)
		}
		return outcomes, nil
	}

	var g errgroup.Group
	g.SetLimit(t.concurrency)

	for i := range nodes {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			translateOne(i)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, &TranslationError{Message: "translation cancelled", Cause: err}
	}

	return outcomes, nil
}

// progressTracker serializes progress reports so that they are
// monotonically non-decreasing even when nodes finish out of order.
type progressTracker struct {
	mu     sync.Mutex
	done   int
	total  int
	report ProgressFunc
}

func (p *progressTracker) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if p.report != nil {
		p.report(p.done, p.total, p.done*100/p.total)
	}
}

// Gateway returns the gateway used for provider calls.
func (t *Translator) Gateway() *Gateway {
	return t.gateway
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() Language {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// IsRTL returns true if the target language uses right-to-left text direction.
func (t *Translator) IsRTL() bool {
	return IsRTL(t.targetLang.Code)
}

// GetDir returns the text direction for the target language ("ltr" or "rtl").
func (t *Translator) GetDir() string {
	return t.targetLang.Direction()
}
