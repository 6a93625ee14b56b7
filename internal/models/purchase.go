package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RolloverStatus is the state of a purchase in the rollover state machine.
// pending may transition to completed or expired; every other state is
// terminal. not_applicable is reserved for purchases excluded from rollover
// by policy.
type RolloverStatus string

const (
	RolloverPending       RolloverStatus = "pending"
	RolloverCompleted     RolloverStatus = "completed"
	RolloverExpired       RolloverStatus = "expired"
	RolloverNotApplicable RolloverStatus = "not_applicable"
)

// Terminal reports whether the status can no longer change.
func (s RolloverStatus) Terminal() bool {
	return s != RolloverPending
}

// Credit validity policy. Every purchase expires 365 days after the purchase
// date, and unused hours may roll over for a further 180 days after expiry.
const (
	ValidityDays       = 365
	RolloverWindowDays = 180
)

// Purchase records a credit purchase. The expiry and rollover-deadline dates
// are computed once at creation and immutable afterward.
type Purchase struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MemberID          primitive.ObjectID `bson:"memberId" json:"memberId"`
	Mobile            string             `bson:"mobile" json:"mobile"` // Denormalized for quick lookup
	PlanName          string             `bson:"planName" json:"planName"`
	AmountPaid        float64            `bson:"amountPaid" json:"amountPaid"`
	HoursGranted      float64            `bson:"hoursGranted" json:"hoursGranted"`
	PurchaseDate      time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	ExpiryDate        time.Time          `bson:"expiryDate" json:"expiryDate"`
	RolloverDeadline  time.Time          `bson:"rolloverDeadline" json:"rolloverDeadline"`
	RolloverStatus    RolloverStatus     `bson:"rolloverStatus" json:"rolloverStatus"`
	RolloverHours     *float64           `bson:"rolloverHours,omitempty" json:"rolloverHours,omitempty"`
	RolloverAppliedAt *time.Time         `bson:"rolloverAppliedAt,omitempty" json:"rolloverAppliedAt,omitempty"`
	CreatedBy         primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CalculateExpiryDates sets ExpiryDate and RolloverDeadline from PurchaseDate.
// Called once at creation; the dates never change afterward.
func (p *Purchase) CalculateExpiryDates() {
	p.ExpiryDate = dateOf(p.PurchaseDate).AddDate(0, 0, ValidityDays)
	p.RolloverDeadline = p.ExpiryDate.AddDate(0, 0, RolloverWindowDays)
}

// IsExpiredAt reports whether the purchase is past its expiry date.
func (p *Purchase) IsExpiredAt(today time.Time) bool {
	return dateOf(today).After(dateOf(p.ExpiryDate))
}

// PurchaseResponse is the API representation of a purchase.
type PurchaseResponse struct {
	*Purchase
	IsExpired bool `json:"isExpired"`
}

// NewPurchaseResponse builds the API view of a purchase as of today.
func NewPurchaseResponse(p *Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		Purchase:  p,
		IsExpired: p.IsExpiredAt(time.Now()),
	}
}
