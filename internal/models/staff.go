package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Staff roles for role-based access control.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// Staff represents a gaming hub staff account used to operate the system.
type Staff struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Role         string             `bson:"role" json:"role"`
	BranchID     primitive.ObjectID `bson:"branchId,omitempty" json:"branchId,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Privileged reports whether the role may use administrative ledger overrides
// (manual session hours, forced rollover).
func (s *Staff) Privileged() bool {
	return PrivilegedRole(s.Role)
}

// PrivilegedRole reports whether a role name carries administrative override
// rights.
func PrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
