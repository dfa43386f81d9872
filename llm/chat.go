package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"easytavern/debuglog"
)

// ChatRouter dispatches normalized chat requests to text providers. Every
// configured text backend speaks the OpenAI-compatible chat completions
// protocol, so the router differs per provider only in base URL and key.
type ChatRouter struct {
	client *http.Client
	logs   *debuglog.Sink
}

// NewChatRouter creates a chat router using the given HTTP client and
// debug log sink
func NewChatRouter(client *http.Client, logs *debuglog.Sink) *ChatRouter {
	if client == nil {
		client = http.DefaultClient
	}
	return &ChatRouter{client: client, logs: logs}
}

// Send executes one chat completion against the provider. It performs a
// single attempt; every failure is logged and propagated to the caller.
func (r *ChatRouter) Send(ctx context.Context, provider TextProvider, request ChatRequest) (ChatResponse, error) {
	if !provider.Enabled {
		err := &ProviderDisabledError{Provider: provider.Name}
		r.logError(provider.Name, request.Model, err)
		return ChatResponse{}, err
	}

	r.logs.Append(debuglog.KindLLM, debuglog.PhaseRequest, request, provider.Name, request.Model)

	body, err := json.Marshal(request)
	if err != nil {
		err = fmt.Errorf("failed to marshal request: %w", err)
		r.logError(provider.Name, request.Model, err)
		return ChatResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		r.logError(provider.Name, request.Model, err)
		return ChatResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		netErr := &NetworkError{Err: err}
		r.logError(provider.Name, request.Model, netErr)
		return ChatResponse{}, netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errText, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Provider: provider.Name, Status: resp.StatusCode, Body: string(errText)}
		r.logError(provider.Name, request.Model, apiErr)
		return ChatResponse{}, apiErr
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		decErr := &DecodeError{Err: err}
		r.logError(provider.Name, request.Model, decErr)
		return ChatResponse{}, decErr
	}

	r.logs.Append(debuglog.KindLLM, debuglog.PhaseResponse, payload, provider.Name, request.Model)

	return ChatResponse{Text: firstChoiceContent(payload), Raw: payload}, nil
}

func (r *ChatRouter) logError(provider, model string, err error) {
	r.logs.Append(debuglog.KindLLM, debuglog.PhaseError, err.Error(), provider, model)
}

// firstChoiceContent extracts choices[0].message.content from a chat
// completion payload, falling back to the literal "No response"
func firstChoiceContent(payload map[string]interface{}) string {
	choices, ok := payload["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "No response"
	}
	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "No response"
	}
	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "No response"
	}
	content, ok := message["content"].(string)
	if !ok || content == "" {
		return "No response"
	}
	return content
}
