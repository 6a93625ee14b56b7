package services

import (
	"context"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateMemberInput is the input for registering a member.
type CreateMemberInput struct {
	FullName string
	Mobile   string
	Email    string
	BranchID primitive.ObjectID
	Notes    string
}

// UpdateMemberInput carries optional member profile changes. Credit totals are
// deliberately absent: they change only through purchases, rollovers and
// sessions.
type UpdateMemberInput struct {
	FullName *string
	Mobile   *string
	Email    *string
	BranchID *primitive.ObjectID
	Notes    *string
}

// CreatePurchaseInput is the input for recording a credit purchase.
type CreatePurchaseInput struct {
	MemberID     primitive.ObjectID
	PlanName     string
	HoursGranted float64
	AmountPaid   float64
	PurchaseDate *time.Time // defaults to now
	CreatedBy    primitive.ObjectID
}

// StartSessionInput is the input for opening a gaming session.
type StartSessionInput struct {
	MemberID  primitive.ObjectID
	BranchID  primitive.ObjectID
	Station   string
	Activity  string
	StaffName string
	Notes     string
	CreatedBy primitive.ObjectID
}

// EndSessionInput is the input for completing a gaming session. ManualHours is
// honored only when Privileged is set; the flag is decided by the HTTP layer
// from the caller's role, never by the ledger itself.
type EndSessionInput struct {
	ManualHours *float64
	Notes       string
	Privileged  bool
}

// MemberService defines the interface for member-related operations
type MemberService interface {
	CreateMember(ctx context.Context, in CreateMemberInput) (*models.Member, error)
	GetMemberByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	GetMemberByMobile(ctx context.Context, mobile string) (*models.Member, error)
	ListMembers(ctx context.Context, search string, page, limit int) ([]*models.Member, int64, error)
	UpdateMember(ctx context.Context, id primitive.ObjectID, in UpdateMemberInput) (*models.Member, error)
	// PurgeMember irreversibly deletes a member together with its whole
	// purchase and session history.
	PurgeMember(ctx context.Context, id primitive.ObjectID) error
}

// PurchaseService defines the interface for the purchase ledger
type PurchaseService interface {
	CreatePurchase(ctx context.Context, in CreatePurchaseInput) (*models.Purchase, error)
	GetPurchaseByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	ListPurchases(ctx context.Context, filter repositories.PurchaseFilter, page, limit int) ([]*models.Purchase, int64, error)
	ApplyRollover(ctx context.Context, purchaseID primitive.ObjectID, force bool) (*models.Purchase, error)
	// SweepExpiredRollovers forfeits every pending rollover past its deadline
	// and returns the number of purchases transitioned.
	SweepExpiredRollovers(ctx context.Context) (int64, error)
}

// SessionService defines the interface for session accounting
type SessionService interface {
	StartSession(ctx context.Context, in StartSessionInput) (*models.GamingSession, error)
	EndSession(ctx context.Context, sessionID primitive.ObjectID, in EndSessionInput) (*models.GamingSession, error)
	VoidSession(ctx context.Context, sessionID primitive.ObjectID, reason string) (*models.GamingSession, error)
	GetSessionByID(ctx context.Context, id primitive.ObjectID) (*models.GamingSession, error)
	GetActiveSessions(ctx context.Context) ([]*models.GamingSession, error)
	ListSessions(ctx context.Context, filter repositories.SessionFilter, page, limit int) ([]*models.GamingSession, int64, error)
}

// AuthService defines the interface for staff authentication
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Staff, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetStaffByID(ctx context.Context, id primitive.ObjectID) (*models.Staff, error)
}

// DashboardService defines the read-only reporting interface
type DashboardService interface {
	OverallStats(ctx context.Context) (*models.OverallStats, error)
	RevenueStats(ctx context.Context) (*models.RevenueStats, error)
	TopMembersByUsage(ctx context.Context, limit int) ([]models.TopMember, error)
	TopMembersBySpend(ctx context.Context, limit int) ([]models.TopMember, error)
	// ExpiringMembers lists members whose plan expires within the given
	// number of days from today, soonest first.
	ExpiringMembers(ctx context.Context, days int) ([]models.ExpiringMember, error)
	// RevenueChart buckets revenue per day over [start, end]; both bounds
	// default to the last 30 days when nil.
	RevenueChart(ctx context.Context, start, end *time.Time) (*models.RevenueChart, error)
	// Export dumps the whole ledger, optionally restricted to records dated
	// in [from, until).
	Export(ctx context.Context, from, until *time.Time) (*models.ExportData, error)
}

// BranchService defines the interface for branch management
type BranchService interface {
	CreateBranch(ctx context.Context, branch *models.Branch) error
	GetBranchByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error)
	ListBranches(ctx context.Context) ([]*models.Branch, error)
}
