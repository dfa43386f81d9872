package llm

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Registry holds the ordered collections of configured providers. Provider
// order is insertion order and is preserved across updates; builtin
// providers can be edited and disabled but never removed.
type Registry struct {
	mu    sync.RWMutex
	text  []TextProvider
	image []ImageProvider
}

// NewRegistry creates a registry seeded with the given provider lists
func NewRegistry(text []TextProvider, image []ImageProvider) *Registry {
	return &Registry{
		text:  append([]TextProvider(nil), text...),
		image: append([]ImageProvider(nil), image...),
	}
}

// TextProviders returns a copy of all configured text providers
func (r *Registry) TextProviders() []TextProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]TextProvider(nil), r.text...)
}

// ImageProviders returns a copy of all configured image providers
func (r *Registry) ImageProviders() []ImageProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ImageProvider(nil), r.image...)
}

// EnabledTextProviders returns only the text providers eligible for dispatch
func (r *Registry) EnabledTextProviders() []TextProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.text, func(p TextProvider, _ int) bool { return p.Enabled })
}

// EnabledImageProviders returns only the image providers eligible for dispatch
func (r *Registry) EnabledImageProviders() []ImageProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.image, func(p ImageProvider, _ int) bool { return p.Enabled })
}

// TextProvider looks up a text provider by id
func (r *Registry) TextProvider(id string) (TextProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.text, func(p TextProvider) bool { return p.ID == id })
}

// ImageProvider looks up an image provider by id
func (r *Registry) ImageProvider(id string) (ImageProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.image, func(p ImageProvider) bool { return p.ID == id })
}

// AddTextProvider appends a new text provider
func (r *Registry) AddTextProvider(p TextProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lo.ContainsBy(r.text, func(q TextProvider) bool { return q.ID == p.ID }) {
		return fmt.Errorf("provider %q already exists", p.ID)
	}
	r.text = append(r.text, p)
	return nil
}

// UpdateTextProvider replaces the provider with the same id in place
func (r *Registry) UpdateTextProvider(p TextProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.text {
		if r.text[i].ID == p.ID {
			r.text[i] = p
			return nil
		}
	}
	return fmt.Errorf("provider %q not found", p.ID)
}

// RemoveTextProvider deletes a provider; builtin providers are protected
func (r *Registry) RemoveTextProvider(id string) error {
	if lo.Contains(builtinTextIDs, id) {
		return fmt.Errorf("cannot remove builtin provider %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.text)
	r.text = lo.Reject(r.text, func(p TextProvider, _ int) bool { return p.ID == id })
	if len(r.text) == before {
		return fmt.Errorf("provider %q not found", id)
	}
	return nil
}

// AddImageProvider appends a new image provider
func (r *Registry) AddImageProvider(p ImageProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lo.ContainsBy(r.image, func(q ImageProvider) bool { return q.ID == p.ID }) {
		return fmt.Errorf("provider %q already exists", p.ID)
	}
	r.image = append(r.image, p)
	return nil
}

// UpdateImageProvider replaces the provider with the same id in place
func (r *Registry) UpdateImageProvider(p ImageProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.image {
		if r.image[i].ID == p.ID {
			r.image[i] = p
			return nil
		}
	}
	return fmt.Errorf("provider %q not found", p.ID)
}

// RemoveImageProvider deletes a provider; builtin providers are protected
func (r *Registry) RemoveImageProvider(id string) error {
	if lo.Contains(builtinImageIDs, id) {
		return fmt.Errorf("cannot remove builtin provider %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.image)
	r.image = lo.Reject(r.image, func(p ImageProvider, _ int) bool { return p.ID == id })
	if len(r.image) == before {
		return fmt.Errorf("provider %q not found", id)
	}
	return nil
}

// ResetTextProviders replaces the text catalog with the builtin defaults,
// discarding custom providers and edits
func (r *Registry) ResetTextProviders() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = DefaultTextProviders()
}

// ResetImageProviders replaces the image catalog with the builtin defaults
func (r *Registry) ResetImageProviders() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.image = DefaultImageProviders()
}

var builtinTextIDs = []string{"ollama", "openai", "anthropic", "openrouter", "deepseek", "koboldcpp", "llamacpp"}

var builtinImageIDs = []string{"automatic1111", "pollinations", "openai-images", "openrouter-images", "chutes", "minimax"}

// DefaultTextProviders returns the builtin text provider catalog
func DefaultTextProviders() []TextProvider {
	return []TextProvider{
		{
			ID:      "ollama",
			Name:    "Ollama",
			Kind:    TextKindOllama,
			BaseURL: "http://localhost:11434/v1",
			Models:  []string{"llama3.2", "mistral", "codellama", "llama2"},
			Enabled: true,
		},
		{
			ID:      "openai",
			Name:    "OpenAI",
			Kind:    TextKindOpenAI,
			BaseURL: "https://api.openai.com/v1",
			Models:  []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
		},
		{
			ID:      "anthropic",
			Name:    "Anthropic",
			Kind:    TextKindAnthropic,
			BaseURL: "https://api.anthropic.com/v1",
			Models:  []string{"claude-3-5-sonnet-20241022", "claude-3-opus-20240229", "claude-3-haiku-20240307"},
		},
		{
			ID:      "openrouter",
			Name:    "OpenRouter",
			Kind:    TextKindOpenRouter,
			BaseURL: "https://openrouter.ai/api/v1",
			Models:  []string{"anthropic/claude-3.5-sonnet", "openai/gpt-4o", "google/gemini-pro"},
		},
		{
			ID:      "deepseek",
			Name:    "DeepSeek",
			Kind:    TextKindCustom,
			BaseURL: "https://api.deepseek.com/v1",
			Models:  []string{"deepseek-chat", "deepseek-coder"},
		},
		{
			ID:      "koboldcpp",
			Name:    "KoboldCpp",
			Kind:    TextKindKoboldCpp,
			BaseURL: "http://localhost:5001/v1",
			Models:  []string{"local-model"},
		},
		{
			ID:      "llamacpp",
			Name:    "LlamaCpp",
			Kind:    TextKindLlamaCpp,
			BaseURL: "http://localhost:8080/v1",
			Models:  []string{"local-model"},
		},
	}
}

// DefaultImageProviders returns the builtin image provider catalog
func DefaultImageProviders() []ImageProvider {
	return []ImageProvider{
		{
			ID:      "automatic1111",
			Name:    "Stable Diffusion WebUI",
			Kind:    ImageKindAutomatic1111,
			BaseURL: "http://localhost:7860",
			Enabled: true,
		},
		{
			ID:      "pollinations",
			Name:    "Pollinations",
			Kind:    ImageKindPollinations,
			BaseURL: "https://image.pollinations.ai",
		},
		{
			ID:      "openai-images",
			Name:    "OpenAI DALL-E",
			Kind:    ImageKindOpenAI,
			BaseURL: "https://api.openai.com/v1",
		},
		{
			ID:      "openrouter-images",
			Name:    "OpenRouter",
			Kind:    ImageKindOpenRouter,
			BaseURL: "https://openrouter.ai/api/v1",
			Models:  []string{"stabilityai/stable-diffusion-xl-base-1.0"},
		},
		{
			ID:      "chutes",
			Name:    "Chutes",
			Kind:    ImageKindChutes,
			BaseURL: "https://image.chutes.ai/v1",
			Models:  []string{"flux-pro"},
		},
		{
			ID:      "minimax",
			Name:    "MiniMax",
			Kind:    ImageKindMiniMax,
			BaseURL: "https://api.minimax.io/v1",
			Models:  []string{"image-01"},
		},
	}
}
