package receipt

import "context"

// Service exposes the parsing pipeline with an optional LLM verifier
// attached. It holds no data-store connection and persists nothing.
type Service struct {
	verifier *Verifier
}

// NewService builds a receipt parser. verifierURL may be empty, in
// which case every call is rules-only.
func NewService(verifierURL string) *Service {
	return &Service{verifier: NewVerifier(verifierURL)}
}

// Parse runs the rules-based pipeline and then, if configured, offers
// the result to the LLM verifier. The context deadline governs the
// verifier call only; the rules pipeline is pure CPU work.
func (s *Service) Parse(ctx context.Context, rawText string) Result {
	res := parse(rawText)
	return s.verifier.Verify(ctx, rawText, res)
}
