// Package xamlai translates XAML string-resource dictionaries using AI.
//
// Xamlai finds every system:String element of a XAML ResourceDictionary,
// sends each non-empty text to a translation provider (OpenAI by default)
// and writes the dictionary back with the translated text in place.
// Elements, attributes and their order are preserved.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/xamlai"
//	    "github.com/ZaguanLabs/xamlai/processor"
//	    "github.com/ZaguanLabs/xamlai/provider"
//	)
//
//	func main() {
//	    // Create provider
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_KEY"),
//	    })
//
//	    // Create translator
//	    t := xamlai.NewTranslator("French", p,
//	        xamlai.WithProcessor(processor.NewXAMLProcessor()),
//	    )
//
//	    // Translate a resource dictionary
//	    result, err := t.Rewrite(context.Background(), data)
//	    if errors.Is(err, xamlai.ErrNoContent) {
//	        fmt.Println("nothing to translate")
//	        return
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    os.Stdout.Write(result.Content)
//	}
package xamlai
