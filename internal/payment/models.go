package payment

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// Payment is a peer-to-peer settlement attempt inside a trip.
type Payment struct {
	ID          string    `json:"id"`
	TripID      string    `json:"tripId"`
	FromUserID  string    `json:"fromUserId"`
	ToUserID    string    `json:"toUserId"`
	Amount      int64     `json:"amount"`
	Method      string    `json:"method,omitempty"`
	Status      string    `json:"status"`
	DeclineNote string    `json:"declineNote,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateRequest is the create-payment payload; ToUserID or ToUsername
// resolves the counterparty.
type CreateRequest struct {
	ToUserID   string  `json:"toUserId"`
	ToUsername string  `json:"toUsername"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

// DeclineRequest is the optional decline-note payload.
type DeclineRequest struct {
	DeclineNote string `json:"declineNote"`
}
