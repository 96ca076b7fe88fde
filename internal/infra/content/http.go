package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// HTTPVerifier talks to the verification service over REST with bearer auth.
//
//	POST {base}/fingerprints  {"fingerprints": [...]}                          → 2xx
//	POST {base}/match         {"fingerprint": "...", "content_type": "..."}    → Verification JSON
type HTTPVerifier struct {
	base   string
	token  string
	client *http.Client
}

// NewHTTPVerifier builds a verifier for the given base URL. An empty token
// disables the Authorization header.
func NewHTTPVerifier(base, token string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 || timeout > 30*time.Second {
		timeout = 30 * time.Second
	}
	return &HTTPVerifier{
		base:  base,
		token: token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (h *HTTPVerifier) Register(ctx context.Context, fingerprints []string) error {
	body := map[string]any{"fingerprints": fingerprints}
	resp, err := h.post(ctx, "/fingerprints", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: register returned %d", domain.ErrVerifierDown, resp.StatusCode)
	}
	return nil
}

func (h *HTTPVerifier) Verify(ctx context.Context, fingerprint, contentType string) (Verification, error) {
	resp, err := h.post(ctx, "/match", map[string]any{
		"fingerprint":  fingerprint,
		"content_type": contentType,
	})
	if err != nil {
		return Verification{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return Verification{}, fmt.Errorf("%w: match returned %d", domain.ErrVerifierDown, resp.StatusCode)
	}
	var v Verification
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Verification{}, fmt.Errorf("%w: decode: %v", domain.ErrVerifierDown, err)
	}
	return v, nil
}

func (h *HTTPVerifier) post(ctx context.Context, path string, body any) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerifierDown, err)
	}
	return resp, nil
}
