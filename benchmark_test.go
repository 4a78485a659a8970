package xamlai_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xamlai"
	"github.com/ZaguanLabs/xamlai/processor"
	"github.com/ZaguanLabs/xamlai/provider"
)

// Benchmarks for performance validation

func dictionary(n int) []byte {
	var b strings.Builder
	b.WriteString(`<ResourceDictionary xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml" xmlns:system="clr-namespace:System;assembly=mscorlib">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<system:String x:Key="Key%d">Text number %d</system:String>`, i, i)
	}
	b.WriteString(`</ResourceDictionary>`)
	return []byte(b.String())
}

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		xamlai.HashText(text)
	}
}

func BenchmarkLookupLanguage(b *testing.B) {
	for i := 0; i < b.N; i++ {
		xamlai.LookupLanguage("pt-BR")
	}
}

func BenchmarkXAMLProcessor_Extract_Small(b *testing.B) {
	proc := processor.NewXAMLProcessor()
	content := dictionary(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.Extract(content)
	}
}

func BenchmarkXAMLProcessor_Extract_Large(b *testing.B) {
	proc := processor.NewXAMLProcessor()
	content := dictionary(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.Extract(content)
	}
}

func BenchmarkTranslator_Rewrite(b *testing.B) {
	content := dictionary(100)
	for _, n := range []int{1, 8} {
		b.Run(fmt.Sprintf("concurrency-%d", n), func(b *testing.B) {
			translator := xamlai.NewTranslator("French", provider.NewMockProvider(),
				xamlai.WithProcessor(processor.NewXAMLProcessor()),
				xamlai.WithConcurrency(n),
			)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := translator.Rewrite(context.Background(), content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
