package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xamlai"
	"github.com/ZaguanLabs/xamlai/processor"
)

func (a *app) newRewriteCmd() *cobra.Command {
	var (
		output      string
		declaration bool
		noIndent    bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite <input.xaml>",
		Short: "Translate every String entry of a XAML resource dictionary",
		Long: `Translate every String entry of a XAML resource dictionary and write the
result. Without -o the output goes to <Language>_translated.xaml next to the
input; "-o -" writes to stdout.

Entries whose translation fails keep their original text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := a.targetLang()
			if err != nil {
				return err
			}

			inputPath := args[0]
			input, err := os.ReadFile(inputPath) // #nosec G304 - CLI tool reads user-specified files
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}

			if output == "" {
				output = filepath.Join(filepath.Dir(inputPath), lang.Name+"_translated.xaml")
			}

			p, closeFn, err := a.newProvider(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			indent := 2
			if noIndent {
				indent = 0
			}
			proc := processor.NewXAMLProcessor(
				processor.WithXMLDeclaration(declaration),
				processor.WithIndent(indent),
			)

			opts := []xamlai.TranslatorOption{xamlai.WithProcessor(proc)}
			var bar *progressBar
			if !quiet {
				bar = newProgressBar(a.stderr, filepath.Base(inputPath))
				opts = append(opts, xamlai.WithProgress(bar.report))
				fmt.Fprintf(a.stderr, "Translating %s to %s...\n", filepath.Base(inputPath), lang.Name)
			}

			start := time.Now()
			result, err := a.newTranslator(lang, p, opts...).Rewrite(cmd.Context(), input)
			bar.finish()
			if errors.Is(err, xamlai.ErrNoContent) {
				fmt.Fprintf(a.stderr, "No translatable content found in %s.\n", filepath.Base(inputPath))
				return nil
			}
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			elapsed := time.Since(start)

			if err := writeOutput(output, a.stdout, result.Content); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(a.stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
				fmt.Fprintf(a.stderr, "  Strings found: %d\n", result.TotalNodes)
				fmt.Fprintf(a.stderr, "  Translated:    %d\n", result.TranslatedCount)
				fmt.Fprintf(a.stderr, "  Empty:         %d\n", result.SkippedCount)
				fmt.Fprintf(a.stderr, "  Failed:        %d\n", result.FailedCount)
				if output != "-" {
					fmt.Fprintf(a.stderr, "  Output:        %s\n", output)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", `Output file ("-" for stdout)`)
	f.BoolVar(&declaration, "xml-declaration", true, "Write an XML declaration")
	f.BoolVar(&noIndent, "no-indent", false, "Do not pretty-print the output")
	f.Int("concurrency", 1, "Maximum translation requests in flight")
	f.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	return cmd
}

func writeOutput(path string, stdout io.Writer, content []byte) error {
	if path == "-" {
		_, err := stdout.Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil { // #nosec G306 - translated resources are not secret
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// progressBar renders translator progress. The total is only known once
// the document has been parsed, so the bar is created on the first report.
type progressBar struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, description string) *progressBar {
	return &progressBar{w: w, description: description}
}

func (p *progressBar) report(done, total, percent int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(p.description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}
	_ = p.bar.Set(done)
}

func (p *progressBar) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
}
