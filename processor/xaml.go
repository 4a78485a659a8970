package processor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/xamlai"
	"github.com/beevik/etree"
)

const (
	// DefaultPrefix is the namespace prefix conventionally bound to the
	// string-resource namespace at the dictionary root.
	DefaultPrefix = "system"

	// DefaultNamespace is used when the root does not declare DefaultPrefix.
	DefaultNamespace = "clr-namespace:System;assembly=mscorlib"

	// StringTag is the local name of translatable elements.
	StringTag = "String"

	// xmlDeclaration is written ahead of the root when declarations are enabled.
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// XAMLProcessor extracts and applies translations to XAML resource dictionaries.
type XAMLProcessor struct {
	prefix           string
	defaultNamespace string
	xmlDeclaration   bool
	indent           int
}

// XAMLOption configures an XAMLProcessor.
type XAMLOption func(*XAMLProcessor)

// WithXMLDeclaration controls whether Apply emits an XML declaration.
func WithXMLDeclaration(enabled bool) XAMLOption {
	return func(p *XAMLProcessor) {
		p.xmlDeclaration = enabled
	}
}

// WithIndent sets the number of spaces used to pretty-print output.
// Zero disables pretty-printing.
func WithIndent(spaces int) XAMLOption {
	return func(p *XAMLProcessor) {
		p.indent = spaces
	}
}

// WithNamespace overrides the prefix looked up on the root element and the
// namespace used when that prefix is not declared.
func WithNamespace(prefix, defaultNamespace string) XAMLOption {
	return func(p *XAMLProcessor) {
		p.prefix = prefix
		p.defaultNamespace = defaultNamespace
	}
}

// NewXAMLProcessor creates a XAML processor. By default it pretty-prints
// with two spaces and omits the XML declaration.
func NewXAMLProcessor(opts ...XAMLOption) *XAMLProcessor {
	p := &XAMLProcessor{
		prefix:           DefaultPrefix,
		defaultNamespace: DefaultNamespace,
		indent:           2,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// parsedXAML holds the parsed document and node mappings.
type parsedXAML struct {
	doc     *etree.Document
	nodeMap map[string]*etree.Element // Maps node ID to String element for mutation
	values  map[*etree.Element]bool
}

// Extract parses XAML and returns every String element in the resolved
// namespace, in document order. Elements with empty text are included.
//
// A String element whose prefix equals the configured prefix but is never
// declared is taken to be in the default namespace.
func (p *XAMLProcessor) Extract(content []byte) (interface{}, []xamlai.TextNode, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, nil, &xamlai.ProcessorError{
			Message:     "failed to parse XAML",
			Cause:       err,
			ContentType: xamlai.ContentTypeXAML,
		}
	}

	root := doc.Root()
	if root == nil {
		return nil, nil, &xamlai.ProcessorError{
			Message:     "document has no root element",
			ContentType: xamlai.ContentTypeXAML,
		}
	}

	stripBlankText(&doc.Element)

	namespace := p.resolveNamespace(root)

	var nodes []xamlai.TextNode
	nodeMap := make(map[string]*etree.Element)
	values := make(map[*etree.Element]bool)

	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		if e.Tag == StringTag && p.elementNamespace(e) == namespace {
			text := valueText(e)
			id := fmt.Sprintf("string-%d", len(nodes))

			nodes = append(nodes, xamlai.TextNode{
				ID:       id,
				Text:     text,
				Hash:     xamlai.HashText(text),
				NodeType: xamlai.NodeTypeXAMLString,
				Key:      keyAttr(e),
				Metadata: map[string]string{
					"namespace": namespace,
					"prefix":    e.Space,
				},
			})
			nodeMap[id] = e
			values[e] = true
			return
		}

		for _, child := range e.ChildElements() {
			walk(child)
		}
	}
	walk(root)

	return &parsedXAML{doc: doc, nodeMap: nodeMap, values: values}, nodes, nil
}

// Apply writes translations into the parsed document and serializes it.
// Nodes without a translation keep their text.
func (p *XAMLProcessor) Apply(parsed interface{}, nodes []xamlai.TextNode, translations map[string]string) ([]byte, error) {
	px, ok := parsed.(*parsedXAML)
	if !ok {
		return nil, &xamlai.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: xamlai.ContentTypeXAML,
		}
	}

	for _, node := range nodes {
		translated, ok := translations[node.ID]
		if !ok {
			continue
		}
		elem, ok := px.nodeMap[node.ID]
		if !ok {
			return nil, &xamlai.ProcessorError{
				Message:     fmt.Sprintf("unknown node %s", node.ID),
				ContentType: xamlai.ContentTypeXAML,
			}
		}
		setValueText(elem, translated)
	}

	return p.serialize(px)
}

// ContentType returns "xaml".
func (p *XAMLProcessor) ContentType() string {
	return xamlai.ContentTypeXAML
}

// resolveNamespace returns the URI bound to p.prefix on the root element,
// or the default namespace when the root does not declare it.
func (p *XAMLProcessor) resolveNamespace(root *etree.Element) string {
	declared := rootNamespaces(root)
	if uri, ok := declared[p.prefix]; ok {
		return uri
	}
	return p.defaultNamespace
}

// elementNamespace is e's namespace URI, with an undeclared p.prefix
// standing for the default namespace.
func (p *XAMLProcessor) elementNamespace(e *etree.Element) string {
	uri := e.NamespaceURI()
	if uri == "" && e.Space == p.prefix {
		return p.defaultNamespace
	}
	return uri
}

func (p *XAMLProcessor) serialize(px *parsedXAML) ([]byte, error) {
	doc := px.doc
	removeXMLDeclaration(doc)

	if p.indent > 0 {
		restore := detachValues(&doc.Element, px.values)
		settings := etree.NewIndentSettings()
		settings.Spaces = p.indent
		settings.PreserveLeafWhitespace = true
		doc.IndentWithSettings(settings)
		restore()
	}

	var buf bytes.Buffer
	if p.xmlDeclaration {
		buf.WriteString(xmlDeclaration)
	}
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, &xamlai.ProcessorError{
			Message:     "failed to serialize XAML",
			Cause:       err,
			ContentType: xamlai.ContentTypeXAML,
		}
	}

	out := buf.Bytes()
	if p.indent > 0 && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return out, nil
}

// rootNamespaces maps each prefix declared on root to its URI.
// The default namespace is stored under the empty prefix.
func rootNamespaces(root *etree.Element) map[string]string {
	ns := make(map[string]string)
	for _, attr := range root.Attr {
		switch {
		case attr.Space == "xmlns":
			ns[attr.Key] = attr.Value
		case attr.Space == "" && attr.Key == "xmlns":
			ns[""] = attr.Value
		}
	}
	return ns
}

// keyAttr returns the value of the x:Key attribute, whatever prefix the
// XAML namespace is bound to.
func keyAttr(e *etree.Element) string {
	for _, attr := range e.Attr {
		if attr.Key == "Key" && attr.Space != "" && attr.Space != "xmlns" {
			return attr.Value
		}
	}
	return ""
}

// valueText concatenates the character data of a String element,
// skipping comments.
func valueText(e *etree.Element) string {
	var b strings.Builder
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

// setValueText replaces all character data of a String element with text.
// Comments are kept and end up after the new text.
func setValueText(e *etree.Element, text string) {
	first := -1
	for i := len(e.Child) - 1; i >= 0; i-- {
		if _, ok := e.Child[i].(*etree.CharData); ok {
			if first >= 0 {
				e.RemoveChildAt(first)
			}
			first = i
		}
	}

	if first < 0 {
		e.SetText(text)
		return
	}
	e.Child[first].(*etree.CharData).SetData(text)
}

// spacePreserved reports whether e carries xml:space="preserve".
func spacePreserved(e *etree.Element) bool {
	for _, attr := range e.Attr {
		if attr.Space == "xml" && attr.Key == "space" {
			return attr.Value == "preserve"
		}
	}
	return false
}

// stripBlankText removes whitespace-only character data that sits between
// child elements. Leaf text and xml:space="preserve" subtrees are kept.
func stripBlankText(e *etree.Element) {
	if spacePreserved(e) || len(e.ChildElements()) == 0 {
		return
	}
	for i := len(e.Child) - 1; i >= 0; i-- {
		switch tok := e.Child[i].(type) {
		case *etree.CharData:
			if strings.Trim(tok.Data, " \t\r\n") == "" {
				e.RemoveChildAt(i)
			}
		case *etree.Element:
			stripBlankText(tok)
		}
	}
}

// detachValues empties the child lists of String values and
// xml:space="preserve" subtrees so that indenting cannot touch them. The
// returned function puts the children back.
func detachValues(root *etree.Element, values map[*etree.Element]bool) func() {
	saved := make(map[*etree.Element][]etree.Token)

	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		if values[e] || spacePreserved(e) {
			if len(e.Child) > 0 {
				saved[e] = e.Child
				e.Child = nil
			}
			return
		}
		for _, child := range e.ChildElements() {
			walk(child)
		}
	}
	walk(root)

	return func() {
		for e, children := range saved {
			e.Child = children
		}
	}
}

// removeXMLDeclaration drops any <?xml ...?> processing instruction so
// that the declaration is controlled by the processor options only.
func removeXMLDeclaration(doc *etree.Document) {
	for i := len(doc.Child) - 1; i >= 0; i-- {
		if pi, ok := doc.Child[i].(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.RemoveChildAt(i)
		}
	}
}

// Verify XAMLProcessor implements ContentProcessor
var _ ContentProcessor = (*XAMLProcessor)(nil)
