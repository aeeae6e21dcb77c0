// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"os"
	"strings"
)

// =============================================================================
// PROVIDER REGISTRY
// =============================================================================

// Provider describes one OpenAI-compatible cloud provider: where it
// lives, which env var holds its key, and a built-in model list shown
// when the provider has no discovery endpoint worth calling.
type Provider struct {
	Name    string
	BaseURL string
	KeyEnv  string
	Models  []string
}

// providers are the known cloud providers, all speaking the OpenAI
// chat-completions wire shape.
var providers = []Provider{
	{
		Name:    "OpenAI",
		BaseURL: "https://api.openai.com/v1",
		KeyEnv:  "OPENAI_API_KEY",
		Models:  []string{"gpt-4o-mini", "gpt-4o", "o1-mini", "o1-preview", "o3-mini"},
	},
	{
		Name:    "Groq",
		BaseURL: "https://api.groq.com/openai/v1",
		KeyEnv:  "GROQ_API_KEY",
		Models:  []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
	},
	{
		Name:    "xAI",
		BaseURL: "https://api.x.ai/v1",
		KeyEnv:  "XAI_API_KEY",
		Models:  []string{"grok-2-latest"},
	},
	{
		Name:    "DeepSeek",
		BaseURL: "https://api.deepseek.com/v1",
		KeyEnv:  "DEEPSEEK_API_KEY",
		Models:  []string{"deepseek-chat", "deepseek-reasoner"},
	},
}

// ModelChoice is one selectable model with its provider name.
type ModelChoice struct {
	Provider string
	ID       string
}

// Registry resolves model identifiers to backends. Cloud providers
// are gated by their API-key env vars; Ollama is included when the
// local server answers.
type Registry struct {
	ollama *OllamaClient
}

// NewRegistry creates a registry with a default local Ollama client.
func NewRegistry() *Registry {
	return &Registry{ollama: NewOllamaClient()}
}

// NewRegistryWithOllama creates a registry with a custom Ollama
// client, used by tests.
func NewRegistryWithOllama(ollama *OllamaClient) *Registry {
	return &Registry{ollama: ollama}
}

// AvailableModels returns the models the user can select right now:
// built-in lists for each cloud provider whose key is configured,
// plus whatever the local Ollama server reports. Never fails; an
// unreachable Ollama just contributes nothing.
func (r *Registry) AvailableModels(ctx context.Context) []ModelChoice {
	var choices []ModelChoice
	for _, p := range providers {
		if os.Getenv(p.KeyEnv) == "" {
			continue
		}
		for _, m := range p.Models {
			choices = append(choices, ModelChoice{Provider: p.Name, ID: m})
		}
	}

	if names, err := r.ollama.ListModels(ctx); err == nil {
		for _, n := range names {
			choices = append(choices, ModelChoice{Provider: "Ollama", ID: n})
		}
	}
	return choices
}

// ForModel returns the backend that serves a model identifier.
// Identifiers in a provider's built-in list route to that provider;
// otherwise a prefix heuristic applies, and anything unrecognized
// (typically a name:tag pair) is assumed local.
func (r *Registry) ForModel(modelID string) (Backend, error) {
	for _, p := range providers {
		for _, m := range p.Models {
			if m == modelID {
				return r.clientFor(p)
			}
		}
	}

	switch {
	case strings.HasPrefix(modelID, "gpt-") || Classify(modelID) == FamilyReasoning:
		return r.clientFor(providers[0]) // OpenAI
	case strings.HasPrefix(modelID, "deepseek"):
		return r.clientFor(providerByName("DeepSeek"))
	case strings.HasPrefix(modelID, "grok"):
		return r.clientFor(providerByName("xAI"))
	default:
		return r.ollama, nil
	}
}

// clientFor builds the client for a cloud provider, failing when its
// key is missing.
func (r *Registry) clientFor(p Provider) (Backend, error) {
	key := os.Getenv(p.KeyEnv)
	if key == "" {
		return nil, &ClientError{
			Type:    ErrTypeNotConfigured,
			Message: p.Name + " API key not configured (" + p.KeyEnv + ")",
		}
	}
	return NewOpenAIClient(p.Name, p.BaseURL, key), nil
}

func providerByName(name string) Provider {
	for _, p := range providers {
		if p.Name == name {
			return p
		}
	}
	return providers[0]
}
