package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Verifier calls an optional external LLM service to cross-check the
// rule-based parse. Its absence, or any transport failure, never fails
// the request: the caller always falls back to the rules-only result.
type Verifier struct {
	url    string
	client *http.Client
}

// NewVerifier builds a verifier for url. An empty url disables
// verification entirely; Verify becomes a no-op in that case.
func NewVerifier(url string) *Verifier {
	return &Verifier{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

type verifyRequest struct {
	RawText string `json:"rawText"`
	Parsed  Result `json:"parsed"`
}

// Verify posts the raw OCR text and the rules-based result to the
// configured LLM endpoint and returns whatever correction it proposes.
// Any error — disabled verifier, deadline, non-2xx response, malformed
// body — is swallowed and the original result is returned unchanged.
func (v *Verifier) Verify(ctx context.Context, rawText string, result Result) Result {
	if v == nil || v.url == "" {
		return result
	}

	body, err := json.Marshal(verifyRequest{RawText: rawText, Parsed: result})
	if err != nil {
		return result
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return result
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return result
	}

	var verified Result
	if err := json.NewDecoder(resp.Body).Decode(&verified); err != nil {
		return result
	}
	verified.Source = sourceLLMVerified
	return verified
}
