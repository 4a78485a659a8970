// Command xamlai translates text and XAML string resources using AI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ZaguanLabs/xamlai"
	"github.com/ZaguanLabs/xamlai/config"
	"github.com/ZaguanLabs/xamlai/processor"
	"github.com/ZaguanLabs/xamlai/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = xamlai.Version
	commit    = xamlai.GitCommit
	buildDate = xamlai.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app carries state shared by the subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	cfg        *config.Config
	logger     zerolog.Logger
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"lang":        "lang",
	"source-lang": "source_lang",
	"model":       "openai.model",
	"base-url":    "openai.base_url",
	"provider":    "provider",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"concurrency": "concurrency",
	"addr":        "server.addr",
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   xamlai.Name,
		Short: xamlai.Description,
		Long: `xamlai translates free text and the String entries of XAML resource
dictionaries using a hosted language model.

The OpenAI key is read from OPENAI_KEY or OPENAI_API_KEY (a .env file in the
working directory is honoured). Other settings come from XAMLAI_* variables,
an optional --config file, or flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (YAML, TOML or JSON)")
	pf.StringP("lang", "l", "", "Target language name or code (e.g. French, ja)")
	pf.String("source-lang", xamlai.DefaultSourceLang, "Language the source texts are written in")
	pf.String("model", provider.DefaultOpenAIModel, "OpenAI model to use")
	pf.String("base-url", "", "OpenAI-compatible API base URL")
	pf.String("provider", config.ProviderOpenAI, "Translation backend: openai or google")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "console", "Log format: console or json")

	root.AddCommand(
		a.newTextCmd(),
		a.newRewriteCmd(),
		a.newDryRunCmd(),
		a.newDiffCmd(),
		a.newServeCmd(),
		a.newLanguagesCmd(),
		a.newVersionCmd(),
	)

	return root
}

// setup loads configuration and logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		DotEnvFile: ".env",
		Flags:      flags,
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := config.SetupLogging(cfg.Log, a.stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// targetLang resolves the configured target language.
func (a *app) targetLang() (xamlai.Language, error) {
	if a.cfg.TargetLang == "" {
		return xamlai.Language{}, errors.New("--lang is required")
	}
	lang, ok := xamlai.LookupLanguage(a.cfg.TargetLang)
	if !ok {
		return xamlai.Language{}, fmt.Errorf("%w: %q (see 'xamlai languages')", xamlai.ErrUnsupportedLanguage, a.cfg.TargetLang)
	}
	return lang, nil
}

// newProvider builds the configured backend. The returned close function
// is never nil.
func (a *app) newProvider(ctx context.Context) (xamlai.AIProvider, func(), error) {
	if err := a.cfg.CheckCredentials(); err != nil {
		return nil, nil, err
	}

	var (
		p       xamlai.AIProvider
		closeFn = func() {}
	)

	switch a.cfg.Provider {
	case config.ProviderGoogle:
		g, err := provider.NewGoogleProvider(ctx, provider.GoogleConfig{
			APIKey:          a.cfg.Google.APIKey,
			CredentialsFile: a.cfg.Google.CredentialsFile,
		})
		if err != nil {
			return nil, nil, err
		}
		p = g
		closeFn = func() {
			if err := g.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to close Google client")
			}
		}
	default:
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:      a.cfg.OpenAI.APIKey,
			Model:       a.cfg.OpenAI.Model,
			BaseURL:     a.cfg.OpenAI.BaseURL,
			Temperature: a.cfg.OpenAI.Temperature,
		})
	}

	if a.cfg.RateLimit.RPM > 0 {
		p = xamlai.NewRateLimitedProvider(p, xamlai.RateLimitConfig{
			RequestsPerMinute: a.cfg.RateLimit.RPM,
			BurstSize:         a.cfg.RateLimit.Burst,
		})
	}

	return p, closeFn, nil
}

func (a *app) newTranslator(lang xamlai.Language, p xamlai.AIProvider, opts ...xamlai.TranslatorOption) *xamlai.Translator {
	base := []xamlai.TranslatorOption{
		xamlai.WithSourceLang(a.cfg.SourceLang),
		xamlai.WithCallTimeout(a.cfg.CallTimeout),
		xamlai.WithConcurrency(a.cfg.Concurrency),
		xamlai.WithLogger(a.logger),
		xamlai.WithProcessor(processor.NewXAMLProcessor()),
	}
	return xamlai.NewTranslator(lang.Name, p, append(base, opts...)...)
}

func (a *app) newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text [text...]",
		Short: "Translate free text (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := a.targetLang()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("please enter some text to translate")
			}

			p, closeFn, err := a.newProvider(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			out := a.newTranslator(lang, p).TranslateText(cmd.Context(), text)
			if out.Failed() {
				fmt.Fprintf(a.stderr, "warning: translation failed, showing original text: %v\n", out.Err)
			}
			fmt.Fprintln(a.stdout, out.Text)
			return nil
		},
	}
}

func (a *app) newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range xamlai.Languages {
				fmt.Fprintf(a.stdout, "%-12s %-4s %s\n", l.Name, l.Code, l.Direction())
			}
			return nil
		},
	}
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", xamlai.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
			fmt.Fprintf(a.stdout, "  source:  %s (%s)\n", xamlai.Repository, xamlai.License)
			return nil
		},
	}
}
