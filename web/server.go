// Package web serves the interactive translation form.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/xamlai"
	"github.com/ZaguanLabs/xamlai/processor"
)

const (
	// Values for http.Server timeouts. Translating a large dictionary takes
	// one model call per string, so the write timeout is generous.
	readHeaderTimeout = 15 * time.Second
	readTimeout       = 60 * time.Second
	writeTimeout      = 15 * time.Minute
	idleTimeout       = 60 * time.Second

	serverShutdownDeadline = 5 * time.Second

	// DefaultMaxUploadBytes bounds uploaded XAML files.
	DefaultMaxUploadBytes int64 = 10 << 20
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures a Server.
type Options struct {
	Provider       xamlai.AIProvider
	SourceLang     string
	Concurrency    int
	CallTimeout    time.Duration
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// Server is the HTTP handler for the web form.
type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	tmpl    *template.Template
	opts    Options
	logger  zerolog.Logger
}

// New creates a Server with its routes and middleware registered.
func New(opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.SourceLang == "" {
		opts.SourceLang = xamlai.DefaultSourceLang
	}

	s := &Server{
		mux:    http.NewServeMux(),
		tmpl:   tmpl,
		opts:   opts,
		logger: opts.Logger,
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /translate/text", s.handleTranslateText)
	s.mux.HandleFunc("POST /translate/xaml", s.handleTranslateXAML)
	s.mux.HandleFunc("GET /healthz", handleHealth)

	s.handler = wrap(s.mux, requestLogger(s.logger), securityHeaders)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// translator builds a translator for one request. The provider is shared.
func (s *Server) translator(lang string) *xamlai.Translator {
	return xamlai.NewTranslator(lang, s.opts.Provider,
		xamlai.WithSourceLang(s.opts.SourceLang),
		xamlai.WithProcessor(processor.NewXAMLProcessor()),
		xamlai.WithConcurrency(s.opts.Concurrency),
		xamlai.WithCallTimeout(s.opts.CallTimeout),
		xamlai.WithLogger(s.logger),
	)
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	return Serve(ctx, listener, handler, logger)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info().
		Str("address", listener.Addr().String()).
		Str("url", "http://"+listener.Addr().String()+"/").
		Msg("Listening")

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Serve(listener)
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	logger.Info().Msg("Server exited gracefully")
	return nil
}
