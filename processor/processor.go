// Package processor provides content processing implementations.
package processor

import "github.com/ZaguanLabs/xamlai"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = xamlai.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = xamlai.TextNode
