// Package receipt implements a pure, stateless, best-effort
// text-to-structured-data pass over raw scanner/OCR output, with an
// optional LLM verification hook that never blocks or fails the
// request.
package receipt

import "tripledger/internal/money"

// Item is a single line item recovered from the receipt.
type Item struct {
	Name  string      `json:"name"`
	Price money.Cents `json:"price"`
}

// Result is the parser's output contract. TransactionDate is a string
// rather than time.Time because OCR date fragments are frequently
// partial or ambiguous; callers that need a parsed date attempt that
// themselves.
type Result struct {
	MerchantName    string      `json:"merchantName"`
	TransactionDate string      `json:"transactionDate,omitempty"`
	Items           []Item      `json:"items"`
	Subtotal        money.Cents `json:"subtotal"`
	Tax             money.Cents `json:"tax"`
	Tip             money.Cents `json:"tip"`
	Total           money.Cents `json:"total"`
	Warnings        []string    `json:"warnings"`
	Confidence      float64     `json:"confidence"`
	Source          string      `json:"source"`
}

const (
	sourceRules       = "rules"
	sourceLLMVerified = "llm_verified"
)

// candidateCeiling bounds the subset-sum search in the items step to
// keep the 2^n exhaustive search tractable.
const candidateCeiling = 18
