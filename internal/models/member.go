package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member represents a gaming hub customer.
//
// The 10-digit normalized mobile number is the natural lookup key (unique
// index). HoursGranted and HoursUsed are the only mutable credit totals;
// balance and expiry status are always derived from them, never stored.
type Member struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Mobile          string             `bson:"mobile" json:"mobile"`
	FullName        string             `bson:"fullName" json:"fullName"`
	Email           string             `bson:"email,omitempty" json:"email,omitempty"`
	CurrentPlan     string             `bson:"currentPlan,omitempty" json:"currentPlan,omitempty"`
	HoursGranted    float64            `bson:"hoursGranted" json:"hoursGranted"`
	HoursUsed       float64            `bson:"hoursUsed" json:"hoursUsed"`
	ExpiryDate      *time.Time         `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	RegistrationDate time.Time         `bson:"registrationDate" json:"registrationDate"`
	BranchID        primitive.ObjectID `bson:"branchId,omitempty" json:"branchId,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BalanceHours returns the member's remaining hour balance.
// Always computed, never persisted.
func (m *Member) BalanceHours() float64 {
	return m.HoursGranted - m.HoursUsed
}

// IsExpiredAt reports whether the member's plan is expired on the given date.
// A member with no expiry date is never expired.
func (m *Member) IsExpiredAt(today time.Time) bool {
	if m.ExpiryDate == nil {
		return false
	}
	return dateOf(today).After(dateOf(*m.ExpiryDate))
}

// MemberResponse is the API representation of a member, including the
// derived balance and expiry status.
type MemberResponse struct {
	*Member
	BalanceHours float64 `json:"balanceHours"`
	IsExpired    bool    `json:"isExpired"`
}

// NewMemberResponse builds the API view of a member as of today.
func NewMemberResponse(m *Member) *MemberResponse {
	return &MemberResponse{
		Member:       m,
		BalanceHours: m.BalanceHours(),
		IsExpired:    m.IsExpiredAt(time.Now()),
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
