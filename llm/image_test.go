package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"easytavern/debuglog"
)

func testImageRequest(prompt string) ImageRequest {
	return ImageRequest{
		Prompt:         prompt,
		NegativePrompt: "blurry, low quality",
		Width:          512,
		Height:         512,
		Steps:          20,
	}
}

func TestImageRouter_Automatic1111(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("sd-image"))

	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		json.NewEncoder(w).Encode(map[string]interface{}{"images": []string{imageB64}})
	}))
	defer server.Close()

	logs := debuglog.NewSink()
	router := NewImageRouter(server.Client(), logs)
	provider := ImageProvider{ID: "a1111", Name: "SD WebUI", Kind: ImageKindAutomatic1111, BaseURL: server.URL, Enabled: true}

	result, err := router.Generate(context.Background(), provider, testImageRequest("a cat"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotPath != "/sdapi/v1/txt2img" {
		t.Errorf("path = %q, want /sdapi/v1/txt2img", gotPath)
	}
	for _, field := range []string{`"negative_prompt"`, `"sampler_name":"Euler a"`, `"cfg_scale":7`} {
		if !strings.Contains(gotBody, field) {
			t.Errorf("body missing %s: %s", field, gotBody)
		}
	}
	if result.Encoding != EncodingBase64 {
		t.Errorf("encoding = %q, want base64", result.Encoding)
	}
	if result.Data != imageB64 {
		t.Errorf("data should be images[0] unchanged")
	}
}

func TestImageRouter_OpenAI(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("dalle-image"))

	var gotPath, gotAuth string
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1,
			"data":    []map[string]string{{"b64_json": imageB64}},
		})
	}))
	defer server.Close()

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "dalle", Name: "OpenAI", Kind: ImageKindOpenAI, BaseURL: server.URL, APIKey: "sk-img", Enabled: true}

	result, err := router.Generate(context.Background(), provider, testImageRequest("a dog"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotPath != "/images/generations" {
		t.Errorf("path = %q, want /images/generations", gotPath)
	}
	if gotAuth != "Bearer sk-img" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPayload["model"] != "dall-e-3" {
		t.Errorf("model = %v, want dall-e-3", gotPayload["model"])
	}
	if gotPayload["size"] != "1024x1024" {
		t.Errorf("size = %v, want 1024x1024", gotPayload["size"])
	}
	if gotPayload["response_format"] != "b64_json" {
		t.Errorf("response_format = %v, want b64_json", gotPayload["response_format"])
	}
	if result.Data != imageB64 {
		t.Errorf("data should be data[0].b64_json unchanged")
	}
}

func TestImageRouter_Pollinations(t *testing.T) {
	raw := []byte("binary-image-bytes")

	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write(raw)
	}))
	defer server.Close()

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "poll", Name: "Pollinations", Kind: ImageKindPollinations, BaseURL: server.URL, Enabled: true}

	result, err := router.Generate(context.Background(), provider, testImageRequest("a misty forest"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(gotURL, "/prompt/") {
		t.Errorf("url = %q, want /prompt/ prefix", gotURL)
	}
	for _, param := range []string{"width=512", "height=512", "nologo=true", "seed="} {
		if !strings.Contains(gotURL, param) {
			t.Errorf("url missing %s: %s", param, gotURL)
		}
	}
	decoded, _ := base64.StdEncoding.DecodeString(result.Data)
	if string(decoded) != string(raw) {
		t.Errorf("binary body should round-trip through base64")
	}
}

func TestImageRouter_OpenRouterURLFallback(t *testing.T) {
	raw := []byte("remote-image-bytes")

	var gotReferer, gotTitle string
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": server.URL + "/img/x.png"}},
		})
	})
	mux.HandleFunc("/img/x.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(raw)
	})

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "or", Name: "OpenRouter", Kind: ImageKindOpenRouter, BaseURL: server.URL, APIKey: "sk-or", Enabled: true}

	result, err := router.Generate(context.Background(), provider, testImageRequest("a castle"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotReferer != "https://easytavern.app" {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotTitle != "EasyTavern" {
		t.Errorf("X-Title = %q", gotTitle)
	}
	decoded, _ := base64.StdEncoding.DecodeString(result.Data)
	if string(decoded) != string(raw) {
		t.Errorf("url fallback should return base64 of the fetched body")
	}
}

func TestImageRouter_OpenRouterInvalidFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]string{{}}})
	}))
	defer server.Close()

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "or", Name: "OpenRouter", Kind: ImageKindOpenRouter, BaseURL: server.URL, APIKey: "k", Enabled: true}

	_, err := router.Generate(context.Background(), provider, testImageRequest("x"))
	if !errors.Is(err, ErrInvalidResponseFormat) {
		t.Errorf("expected ErrInvalidResponseFormat, got %v", err)
	}
}

func TestImageRouter_MiniMax(t *testing.T) {
	raw := []byte("minimax-image")

	var gotPath string
	var gotPayload map[string]interface{}
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/text_to_image", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1,
			"data":    []map[string]string{{"url": server.URL + "/out.png"}},
		})
	})
	mux.HandleFunc("/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(raw)
	})

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "mm", Name: "MiniMax", Kind: ImageKindMiniMax, BaseURL: server.URL, APIKey: "k", Enabled: true}

	result, err := router.Generate(context.Background(), provider, testImageRequest("a harbor"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotPath != "/text_to_image" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPayload["model"] != "image-01" {
		t.Errorf("model = %v, want image-01 default", gotPayload["model"])
	}
	if gotPayload["response_format"] != "url" {
		t.Errorf("response_format = %v, want url", gotPayload["response_format"])
	}
	decoded, _ := base64.StdEncoding.DecodeString(result.Data)
	if string(decoded) != string(raw) {
		t.Errorf("url result should be fetched and base64-encoded")
	}
}

func TestImageRouter_UnsupportedKind(t *testing.T) {
	router := NewImageRouter(&http.Client{}, debuglog.NewSink())
	provider := ImageProvider{ID: "c", Name: "Comfy", Kind: ImageKindComfyUI, BaseURL: "http://localhost", Enabled: true}

	_, err := router.Generate(context.Background(), provider, testImageRequest("x"))
	var unsupported *UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %v", err)
	}
	if unsupported.Kind != ImageKindComfyUI {
		t.Errorf("error should name the kind, got %s", unsupported.Kind)
	}
}

func TestImageRouter_DisabledProvider(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "off", Name: "Off", Kind: ImageKindAutomatic1111, BaseURL: server.URL, Enabled: false}

	_, err := router.Generate(context.Background(), provider, testImageRequest("x"))
	var disabled *ProviderDisabledError
	if !errors.As(err, &disabled) {
		t.Fatalf("expected ProviderDisabledError, got %v", err)
	}
	if calls != 0 {
		t.Errorf("disabled provider must not be called, saw %d calls", calls)
	}
}

func TestImageRouter_ResponseEventOmitsPayload(t *testing.T) {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("a fairly large image payload"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"images": []string{imageB64}})
	}))
	defer server.Close()

	logs := debuglog.NewSink()
	router := NewImageRouter(server.Client(), logs)
	provider := ImageProvider{ID: "a", Name: "SD", Kind: ImageKindAutomatic1111, BaseURL: server.URL, Enabled: true}

	if _, err := router.Generate(context.Background(), provider, testImageRequest("x")); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	events := logs.List()
	last := events[len(events)-1]
	if last.Phase != debuglog.PhaseResponse {
		t.Fatalf("last event phase = %s", last.Phase)
	}
	content := fmt.Sprintf("%v", last.Content)
	if strings.Contains(content, imageB64) {
		t.Error("response event must not contain the image payload")
	}
	if !strings.Contains(content, "dataLength") {
		t.Errorf("response event should record the payload length, got %s", content)
	}
}

func TestImageRouter_APIErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad prompt"))
	}))
	defer server.Close()

	router := NewImageRouter(server.Client(), debuglog.NewSink())
	provider := ImageProvider{ID: "a", Name: "SD", Kind: ImageKindAutomatic1111, BaseURL: server.URL, Enabled: true}

	_, err := router.Generate(context.Background(), provider, testImageRequest("x"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Body != "bad prompt" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}
