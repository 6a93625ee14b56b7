package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus is the state of a gaming session. active may transition to
// completed or voided; both are terminal.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionVoided    SessionStatus = "voided"
)

// GamingSession records a timed usage window against a member's balance.
//
// HoursConsumed is zero while the session is active and is set exactly once
// when the session completes; it is never recomputed afterward. EndTime is set
// iff the session is no longer active. At most one session per member may be
// active at a time.
type GamingSession struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MemberID      primitive.ObjectID `bson:"memberId" json:"memberId"`
	Mobile        string             `bson:"mobile" json:"mobile"` // Denormalized
	BranchID      primitive.ObjectID `bson:"branchId,omitempty" json:"branchId,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
	StartTime     time.Time          `bson:"startTime" json:"startTime"`
	EndTime       *time.Time         `bson:"endTime,omitempty" json:"endTime,omitempty"`
	HoursConsumed float64            `bson:"hoursConsumed" json:"hoursConsumed"`
	Station       string             `bson:"station,omitempty" json:"station,omitempty"`
	Activity      string             `bson:"activity,omitempty" json:"activity,omitempty"`
	StaffName     string             `bson:"staffName,omitempty" json:"staffName,omitempty"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status        SessionStatus      `bson:"status" json:"status"`
	CreatedBy     primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the session is still open.
func (s *GamingSession) IsActive() bool {
	return s.Status == SessionActive
}
