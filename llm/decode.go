package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
)

// Decoder normalizes heterogeneous backend image payloads into the single
// canonical base64 ImageResult shape
type Decoder struct {
	client *http.Client
}

// NewDecoder creates a decoder using the given HTTP client for URL fetches
func NewDecoder(client *http.Client) *Decoder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Decoder{client: client}
}

// FromBase64 wraps inline base64 data, validating that it decodes
func (d *Decoder) FromBase64(data string) (ImageResult, error) {
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return ImageResult{}, &DecodeError{Err: fmt.Errorf("payload is not valid base64: %w", err)}
	}
	return ImageResult{Data: data, Encoding: EncodingBase64}, nil
}

// FromBytes encodes raw image bytes as base64
func (d *Decoder) FromBytes(data []byte) (ImageResult, error) {
	if len(data) == 0 {
		return ImageResult{}, &DecodeError{Err: fmt.Errorf("empty image payload")}
	}
	return ImageResult{Data: base64.StdEncoding.EncodeToString(data), Encoding: EncodingBase64}, nil
}

// FromURL fetches a remote image and re-encodes its body as base64.
// This is the one secondary HTTP GET URL-returning backends incur.
func (d *Decoder) FromURL(ctx context.Context, imageURL string) (ImageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return ImageResult{}, &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return ImageResult{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ImageResult{}, &NetworkError{Err: fmt.Errorf("image fetch returned status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImageResult{}, &NetworkError{Err: fmt.Errorf("failed to read image body: %w", err)}
	}

	return d.FromBytes(data)
}
