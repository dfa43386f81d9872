package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"

	"easytavern/debuglog"

	"github.com/sashabaranov/go-openai"
)

// ImageRequest is the normalized request handed to the image router
type ImageRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
}

// imageAdapter implements one backend protocol branch. Each adapter builds
// the provider-specific call and funnels its raw output through the decoder
// so every branch returns the same canonical shape.
type imageAdapter func(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error)

// ImageRouter dispatches normalized image requests to the protocol adapter
// matching the provider kind. Adding a backend means registering one more
// adapter in newAdapters.
type ImageRouter struct {
	client   *http.Client
	logs     *debuglog.Sink
	decoder  *Decoder
	adapters map[ImageProviderKind]imageAdapter
}

// NewImageRouter creates an image router using the given HTTP client and
// debug log sink
func NewImageRouter(client *http.Client, logs *debuglog.Sink) *ImageRouter {
	if client == nil {
		client = http.DefaultClient
	}
	r := &ImageRouter{
		client:  client,
		logs:    logs,
		decoder: NewDecoder(client),
	}
	r.adapters = r.newAdapters()
	return r
}

// newAdapters is the single registration point for backend protocols
func (r *ImageRouter) newAdapters() map[ImageProviderKind]imageAdapter {
	return map[ImageProviderKind]imageAdapter{
		ImageKindAutomatic1111: r.generateAutomatic1111,
		ImageKindOpenAI:        r.generateOpenAI,
		ImageKindPollinations:  r.generatePollinations,
		ImageKindOpenRouter:    r.generateOpenAICompatible,
		ImageKindChutes:        r.generateOpenAICompatible,
		ImageKindMiniMax:       r.generateMiniMax,
	}
}

// Generate executes one image generation against the provider. A single
// attempt, no retries; failures are logged and propagated.
func (r *ImageRouter) Generate(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error) {
	if !provider.Enabled {
		err := &ProviderDisabledError{Provider: provider.Name}
		r.logError(provider.Name, err)
		return ImageResult{}, err
	}

	r.logs.Append(debuglog.KindImage, debuglog.PhaseRequest, req, provider.Name, "")

	adapter, ok := r.adapters[provider.Kind]
	if !ok {
		err := &UnsupportedProviderError{Kind: provider.Kind}
		r.logError(provider.Name, err)
		return ImageResult{}, err
	}

	result, err := adapter(ctx, provider, req)
	if err != nil {
		r.logError(provider.Name, err)
		return ImageResult{}, err
	}

	// Log only the shape, never the image payload itself
	r.logs.Append(debuglog.KindImage, debuglog.PhaseResponse, map[string]interface{}{
		"format":     result.Encoding,
		"dataLength": len(result.Data),
	}, provider.Name, "")

	return result, nil
}

func (r *ImageRouter) logError(provider string, err error) {
	r.logs.Append(debuglog.KindImage, debuglog.PhaseError, err.Error(), provider, "")
}

// generateAutomatic1111 targets the Stable Diffusion WebUI txt2img API
func (r *ImageRouter) generateAutomatic1111(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error) {
	payload := map[string]interface{}{
		"prompt":          req.Prompt,
		"negative_prompt": req.NegativePrompt,
		"width":           req.Width,
		"height":          req.Height,
		"steps":           req.Steps,
		"sampler_name":    "Euler a",
		"cfg_scale":       7,
	}

	body, err := r.postJSON(ctx, provider, provider.BaseURL+"/sdapi/v1/txt2img", payload, nil)
	if err != nil {
		return ImageResult{}, err
	}

	var parsed struct {
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ImageResult{}, &DecodeError{Err: err}
	}
	if len(parsed.Images) == 0 {
		return ImageResult{}, ErrInvalidResponseFormat
	}

	return r.decoder.FromBase64(parsed.Images[0])
}

// generateOpenAI targets the DALL-E images API through the official SDK
func (r *ImageRouter) generateOpenAI(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error) {
	config := openai.DefaultConfig(provider.APIKey)
	if provider.BaseURL != "" {
		config.BaseURL = provider.BaseURL
	}
	config.HTTPClient = r.client
	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE3,
		Prompt:         req.Prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return ImageResult{}, &APIError{Provider: provider.Name, Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return ImageResult{}, &NetworkError{Err: err}
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return ImageResult{}, ErrInvalidResponseFormat
	}

	return r.decoder.FromBase64(resp.Data[0].B64JSON)
}

// generatePollinations embeds the prompt in the URL path; the backend
// returns the image binary directly on GET
func (r *ImageRouter) generatePollinations(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error) {
	endpoint := fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&seed=%d&nologo=true",
		provider.BaseURL, url.PathEscape(req.Prompt), req.Width, req.Height, rand.Intn(1000))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ImageResult{}, &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return ImageResult{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errText, _ := io.ReadAll(resp.Body)
		return ImageResult{}, &APIError{Provider: provider.Name, Status: resp.StatusCode, Body: string(errText)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImageResult{}, &NetworkError{Err: fmt.Errorf("failed to read image body: %w", err)}
	}

	return r.decoder.FromBytes(data)
}

// generateOpenAICompatible serves OpenRouter and Chutes, both of which use
// the OpenAI images endpoint but usually return a URL instead of b64_json
func (r *ImageRouter) generateOpenAICompatible(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error) {
	model := defaultImageModel(provider)

	payload := map[string]interface{}{
		"model":  model,
		"prompt": req.Prompt,
		"n":      1,
		"size":   fmt.Sprintf("%dx%d", req.Width, req.Height),
	}

	headers := map[string]string{}
	if provider.Kind == ImageKindOpenRouter {
		headers["HTTP-Referer"] = "https://easytavern.app"
		headers["X-Title"] = "EasyTavern"
	}

	body, err := r.postJSON(ctx, provider, provider.BaseURL+"/images/generations", payload, headers)
	if err != nil {
		return ImageResult{}, err
	}

	var parsed imagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ImageResult{}, &DecodeError{Err: err}
	}

	switch {
	case len(parsed.Data) > 0 && parsed.Data[0].B64JSON != "":
		return r.decoder.FromBase64(parsed.Data[0].B64JSON)
	case len(parsed.Data) > 0 && parsed.Data[0].URL != "":
		return r.decoder.FromURL(ctx, parsed.Data[0].URL)
	default:
		return ImageResult{}, ErrInvalidResponseFormat
	}
}

// generateMiniMax targets the MiniMax text-to-image API, which prefers
// URL responses
func (r *ImageRouter) generateMiniMax(ctx context.Context, provider ImageProvider, req ImageRequest) (ImageResult, error) {
	model := provider.DefaultModel()
	if model == "" {
		model = "image-01"
	}

	payload := map[string]interface{}{
		"model":           model,
		"prompt":          req.Prompt,
		"size":            fmt.Sprintf("%dx%d", req.Width, req.Height),
		"response_format": "url",
	}

	body, err := r.postJSON(ctx, provider, provider.BaseURL+"/text_to_image", payload, nil)
	if err != nil {
		return ImageResult{}, err
	}

	var parsed imagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ImageResult{}, &DecodeError{Err: err}
	}

	switch {
	case len(parsed.Data) > 0 && parsed.Data[0].URL != "":
		return r.decoder.FromURL(ctx, parsed.Data[0].URL)
	case len(parsed.Data) > 0 && parsed.Data[0].B64JSON != "":
		return r.decoder.FromBase64(parsed.Data[0].B64JSON)
	default:
		return ImageResult{}, ErrInvalidResponseFormat
	}
}

// imagesResponse is the OpenAI-style image generation response envelope
type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// postJSON issues an authenticated JSON POST and returns the response body,
// mapping transport failures to NetworkError and non-2xx statuses to
// APIError with the body text
func (r *ImageRouter) postJSON(ctx context.Context, provider ImageProvider, endpoint string, payload interface{}, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Provider: provider.Name, Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// defaultImageModel picks the configured model or the protocol default
func defaultImageModel(provider ImageProvider) string {
	if model := provider.DefaultModel(); model != "" {
		return model
	}
	if provider.Kind == ImageKindOpenRouter {
		return "stabilityai/stable-diffusion-xl-base-1.0"
	}
	return "flux-pro"
}
