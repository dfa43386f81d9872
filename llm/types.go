package llm

// TextProviderKind identifies the backend family of a text provider.
// All text providers in scope speak the OpenAI-compatible chat completions
// protocol; the kind is kept for configuration and display purposes.
type TextProviderKind string

const (
	TextKindOpenAI     TextProviderKind = "openai"
	TextKindAnthropic  TextProviderKind = "anthropic"
	TextKindOllama     TextProviderKind = "ollama"
	TextKindKoboldCpp  TextProviderKind = "koboldcpp"
	TextKindLlamaCpp   TextProviderKind = "llamacpp"
	TextKindOpenRouter TextProviderKind = "openrouter"
	TextKindLocal      TextProviderKind = "local-inference"
	TextKindCustom     TextProviderKind = "custom"
)

// ImageProviderKind identifies the backend protocol of an image provider
type ImageProviderKind string

const (
	ImageKindAutomatic1111 ImageProviderKind = "automatic1111"
	ImageKindComfyUI       ImageProviderKind = "comfyui"
	ImageKindOpenAI        ImageProviderKind = "openai"
	ImageKindPollinations  ImageProviderKind = "pollinations"
	ImageKindOpenRouter    ImageProviderKind = "openrouter"
	ImageKindChutes        ImageProviderKind = "chutes"
	ImageKindMiniMax       ImageProviderKind = "minimax"
	ImageKindCustom        ImageProviderKind = "custom"
)

// TextProvider describes a configured text-generation backend
type TextProvider struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Kind    TextProviderKind `json:"type"`
	BaseURL string           `json:"base_url"`
	APIKey  string           `json:"api_key,omitempty"`
	Models  []string         `json:"models"`
	Enabled bool             `json:"enabled"`
}

// ImageProvider describes a configured image-generation backend
type ImageProvider struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Kind    ImageProviderKind `json:"type"`
	BaseURL string            `json:"base_url"`
	APIKey  string            `json:"api_key,omitempty"`
	Models  []string          `json:"models,omitempty"`
	Enabled bool              `json:"enabled"`
}

// DefaultModel returns the first configured model, if any
func (p ImageProvider) DefaultModel() string {
	if len(p.Models) > 0 {
		return p.Models[0]
	}
	return ""
}

// ChatMessage is a single turn in the wire format shared by all text backends
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the uniform request shape dispatched to text providers.
// Field tags are the OpenAI-compatible wire names; immutable once built.
type ChatRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

// ChatResponse is the normalized result of a chat completion call
type ChatResponse struct {
	Text string                 // first choice's message content, or "No response"
	Raw  map[string]interface{} // full backend payload, kept for logging only
}

// ImageEncoding is the canonical encoding of normalized image payloads
type ImageEncoding string

// EncodingBase64 is the only encoding callers ever see; URL-returning
// backends are fetched and re-encoded before being handed back.
const EncodingBase64 ImageEncoding = "base64"

// ImageResult is the normalized output of every image backend branch
type ImageResult struct {
	Data     string // base64-encoded image bytes
	Encoding ImageEncoding
}
