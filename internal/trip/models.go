package trip

import "time"

// Trip is a group-spending context. Status is kept as the four-value
// set {planning, active, completed, cancelled} end to end, even though
// the documented PATCH payload only mentions three of them.
type Trip struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

const (
	StatusPlanning  = "planning"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

func validStatus(s string) bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// TripMember is the (tripId, userId) membership relation.
type TripMember struct {
	TripID   string    `json:"tripId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// TripInvite is a pending offer to join a trip.
type TripInvite struct {
	ID        string    `json:"id"`
	TripID    string    `json:"tripId"`
	InviterID string    `json:"inviterId"`
	InviteeID string    `json:"inviteeId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the per-trip aggregate the trip list endpoint returns
// alongside each Trip.
type Summary struct {
	Trip
	TotalAmount  int64 `json:"totalAmount"`
	ExpenseCount int   `json:"expenseCount"`
	UserBalance  int64 `json:"userBalance"`
}
