// Package provider defines the AI provider interface and implementations.
package provider

import "github.com/ZaguanLabs/xamlai"

// AIProvider is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type AIProvider = xamlai.AIProvider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = xamlai.TranslateRequest
