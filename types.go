package xamlai

import "strings"

const (
	// ContentTypeXAML is the content type handled by the XAML processor.
	ContentTypeXAML = "xaml"

	// NodeTypeXAMLString marks a TextNode extracted from a String element.
	NodeTypeXAMLString = "xaml_string"
)

// TextNode represents a translatable unit of content.
type TextNode struct {
	ID       string            // Position in document order ("string-0", "string-1", ...)
	Text     string            // Original text content, untrimmed; empty when the element has no text
	Hash     string            // SHA-256 hash of the trimmed Text
	NodeType string            // Content type: "xaml_string"
	Key      string            // Value of the x:Key attribute, if any
	Metadata map[string]string // Additional info (namespace URI, prefix, ...)
}

// IsEmpty reports whether the node carries no translatable text.
// Whitespace-only text counts as empty.
func (n TextNode) IsEmpty() bool {
	return strings.TrimSpace(n.Text) == ""
}

// Outcome is the result of a single gateway call.
//
// Text always holds a usable value: the translation on success, the
// original text when the call failed. Err is non-nil only in the latter case.
type Outcome struct {
	Text string
	Err  error
}

// Failed reports whether the gateway fell back to the original text.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Result is the outcome of rewriting a document.
type Result struct {
	Content         []byte // Serialized, translated document
	TotalNodes      int    // String nodes found
	TranslatedCount int    // Nodes whose text was replaced by a translation
	SkippedCount    int    // Nodes left alone because their text was empty
	FailedCount     int    // Nodes that kept their original text after a gateway failure
}

// ProgressFunc receives progress after each node has been processed.
// percent is done*100/total, rounded down.
type ProgressFunc func(done, total, percent int)

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}
