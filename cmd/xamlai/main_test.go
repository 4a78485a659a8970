package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/ZaguanLabs/xamlai/internal/fakeopenai"
)

const inputXAML = `<?xml version="1.0" encoding="utf-8"?>
<ResourceDictionary xmlns="http://schemas.microsoft.com/winfx/2006/xaml/presentation"
                    xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml"
                    xmlns:system="clr-namespace:System;assembly=mscorlib">
    <system:String x:Key="Open">Open</system:String>
    <system:String x:Key="Empty"></system:String>
    <system:String x:Key="Save">Save</system:String>
</ResourceDictionary>`

// isolate clears settings the host environment could leak into run.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_KEY", "OPENAI_API_KEY", "XAMLAI_OPENAI_API_KEY", "XAMLAI_LANG",
		"XAMLAI_PROVIDER", "XAMLAI_OPENAI_BASE_URL", "XAMLAI_RATE_LIMIT_RPM",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"version"}, &stdout, &stderr)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "xamlai ") {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_Languages(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"languages"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 76 {
		t.Errorf("expected 76 languages, got %d", len(lines))
	}
	if !strings.Contains(stdout.String(), "Arabic") || !strings.Contains(stdout.String(), "rtl") {
		t.Errorf("expected Arabic marked rtl, got: %s", stdout.String())
	}
}

func TestRun_MissingLang(t *testing.T) {
	isolate(t)
	input := writeFile(t, "en-US.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	err := run([]string{"rewrite", input}, &stdout, &stderr)

	if err == nil || !strings.Contains(err.Error(), "--lang is required") {
		t.Fatalf("expected '--lang is required' error, got: %v", err)
	}
}

func TestRun_UnsupportedLang(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"text", "--lang", "Klingon", "Hello"}, &stdout, &stderr)

	if err == nil || !strings.Contains(err.Error(), "unsupported language") {
		t.Fatalf("expected unsupported language error, got: %v", err)
	}
}

func TestRun_MissingAPIKey(t *testing.T) {
	isolate(t)
	input := writeFile(t, "en-US.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	err := run([]string{"rewrite", "--lang", "French", input}, &stdout, &stderr)

	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected API key error, got: %v", err)
	}
}

func TestRun_UnknownProvider(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"text", "--provider", "deepl", "--lang", "French", "Hello"}, &stdout, &stderr)

	if err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Fatalf("expected unknown provider error, got: %v", err)
	}
}

func TestRun_Text(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")
	srv := fakeopenai.New(t, map[string]string{"Hello World": "Hallo Welt"})

	var stdout, stderr bytes.Buffer
	err := run([]string{"text", "--lang", "de", "--base-url", srv.BaseURL(), "Hello", "World"}, &stdout, &stderr)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "Hallo Welt\n" {
		t.Errorf("unexpected output: %q", stdout.String())
	}

	req := srv.Requests()[0]
	if req.Messages[0].Content != "You are an expert English to German translator." {
		t.Errorf("unexpected system prompt: %q", req.Messages[0].Content)
	}
}

func TestRun_TextFailureKeepsOriginal(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")
	srv := fakeopenai.New(t, map[string]string{})

	var stdout, stderr bytes.Buffer
	err := run([]string{"text", "--lang", "French", "--base-url", srv.BaseURL(), "Open"}, &stdout, &stderr)

	if err != nil {
		t.Fatalf("gateway failures should not fail the command: %v", err)
	}
	if stdout.String() != "Open\n" {
		t.Errorf("expected original text, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "warning") {
		t.Errorf("expected a warning, got: %s", stderr.String())
	}
}

func TestRun_Rewrite(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")
	srv := fakeopenai.New(t, map[string]string{"Open": "فتح", "Save": "حفظ"})

	input := writeFile(t, "en-US.xaml", inputXAML)
	output := filepath.Join(t.TempDir(), "ar.xaml")

	var stdout, stderr bytes.Buffer
	err := run([]string{"rewrite", "--lang", "Arabic", "--base-url", srv.BaseURL(), "-o", output, input}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("rewrite failed: %v\n%s", err, stderr.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("expected XML declaration, got: %s", data)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("output is not well-formed: %v", err)
	}
	strs := doc.FindElements("//system:String")
	if len(strs) != 3 {
		t.Fatalf("expected 3 strings, got %d", len(strs))
	}
	want := []string{"فتح", "", "حفظ"}
	for i, e := range strs {
		if e.Text() != want[i] {
			t.Errorf("string %d: got %q, want %q", i, e.Text(), want[i])
		}
	}

	if got := strings.Join(srv.UserTexts(), ","); got != "Open,Save" {
		t.Errorf("unexpected requests: %s", got)
	}
	if !strings.Contains(stderr.String(), "Translated:    2") {
		t.Errorf("expected summary on stderr, got: %s", stderr.String())
	}
}

func TestRun_RewriteDefaultOutput(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")
	srv := fakeopenai.New(t, map[string]string{"Open": "Ouvrir", "Save": "Enregistrer"})

	input := writeFile(t, "en-US.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	err := run([]string{"rewrite", "-l", "French", "--base-url", srv.BaseURL(), "--quiet", "--concurrency", "2", input}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(input), "French_translated.xaml"))
	if err != nil {
		t.Fatalf("expected default output file: %v", err)
	}
	if !strings.Contains(string(data), `<system:String x:Key="Save">Enregistrer</system:String>`) {
		t.Errorf("unexpected output: %s", data)
	}
	if stderr.Len() != 0 {
		t.Errorf("--quiet should suppress progress, got: %s", stderr.String())
	}
}

func TestRun_RewriteStdoutCompact(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")
	srv := fakeopenai.New(t, map[string]string{"Open": "Ouvrir", "Save": "Enregistrer"})

	input := writeFile(t, "en-US.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"rewrite", "--lang", "French", "--base-url", srv.BaseURL(), "--quiet",
		"--xml-declaration=false", "--no-indent", "-o", "-", input,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	out := stdout.String()
	if strings.HasPrefix(out, "<?xml") {
		t.Errorf("declaration should be disabled: %s", out)
	}
	if strings.Contains(out, "\n") {
		t.Errorf("compact output should have no newlines: %q", out)
	}
}

func TestRun_RewriteNoContent(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")
	srv := fakeopenai.New(t, map[string]string{})

	input := writeFile(t, "colors.xaml", `<ResourceDictionary xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml"><Color x:Key="A">Red</Color></ResourceDictionary>`)

	var stdout, stderr bytes.Buffer
	err := run([]string{"rewrite", "--lang", "French", "--base-url", srv.BaseURL(), input}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("no content should not be an error: %v", err)
	}
	if !strings.Contains(stderr.String(), "No translatable content found") {
		t.Errorf("expected informational line, got: %s", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(input), "French_translated.xaml")); !os.IsNotExist(err) {
		t.Error("no output should be written")
	}
	if len(srv.Requests()) != 0 {
		t.Errorf("expected no requests, got %d", len(srv.Requests()))
	}
}

func TestRun_RewriteMalformed(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_KEY", "test-key")

	input := writeFile(t, "broken.xaml", `<ResourceDictionary><system:String>Open</ResourceDictionary>`)

	var stdout, stderr bytes.Buffer
	err := run([]string{"rewrite", "--lang", "French", "--base-url", "http://127.0.0.1:1/v1", input}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "processor error") {
		t.Fatalf("expected processor error, got: %v", err)
	}
}

func TestRun_DryRun(t *testing.T) {
	isolate(t)
	input := writeFile(t, "en-US.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"dry-run", input}, &stdout, &stderr); err != nil {
		t.Fatalf("dry-run failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{`"Open"`, `"Save"`, "(empty, skipped)", "Found 3 String entries (1 empty)"} {
		if !strings.Contains(output, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, output)
		}
	}
}

func TestRun_DryRunJSON(t *testing.T) {
	isolate(t)
	input := writeFile(t, "en-US.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"dry-run", "--json", input}, &stdout, &stderr); err != nil {
		t.Fatalf("dry-run JSON failed: %v", err)
	}

	var result dryRunOutput
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if result.NodeCount != 3 || result.EmptyCount != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.Namespace != "clr-namespace:System;assembly=mscorlib" {
		t.Errorf("unexpected namespace: %q", result.Namespace)
	}
	if result.Nodes[2].Key != "Save" || result.Nodes[2].Text != "Save" {
		t.Errorf("unexpected node: %+v", result.Nodes[2])
	}
}

func TestRun_Diff(t *testing.T) {
	isolate(t)
	oldPath := writeFile(t, "old.xaml", inputXAML)
	newPath := writeFile(t, "new.xaml", strings.Replace(inputXAML, ">Save<", ">Save as<", 1))

	var stdout, stderr bytes.Buffer
	if err := run([]string{"diff", "--json", oldPath, newPath}, &stdout, &stderr); err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	var result diffOutput
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if result.Stats.Modified != 1 || result.Stats.Unchanged != 2 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
	if len(result.Modified) != 1 || result.Modified[0].Key != "Save" || result.Modified[0].New != "Save as" {
		t.Errorf("unexpected modified entries: %+v", result.Modified)
	}
}

func TestRun_DiffNoChanges(t *testing.T) {
	isolate(t)
	path := writeFile(t, "same.xaml", inputXAML)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"diff", path, path}, &stdout, &stderr); err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "No changes detected.") {
		t.Errorf("unexpected output: %s", stdout.String())
	}
}
