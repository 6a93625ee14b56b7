package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OverallStats aggregates the headline dashboard numbers. Balance hours are
// always derived from the granted/used sums, never read from storage.
type OverallStats struct {
	TotalMembers        int64   `json:"totalMembers"`
	ActiveMembers       int64   `json:"activeMembers"`
	ExpiredMembers      int64   `json:"expiredMembers"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalHoursGranted   float64 `json:"totalHoursGranted"`
	TotalHoursUsed      float64 `json:"totalHoursUsed"`
	TotalBalanceHours   float64 `json:"totalBalanceHours"`
	ActiveSessions      int64   `json:"activeSessions"`
	MembersExpiringSoon int64   `json:"membersExpiringSoon"`
	PendingRollovers    int64   `json:"pendingRollovers"`
}

// RevenueStats aggregates purchase revenue figures.
type RevenueStats struct {
	TotalRevenue         float64 `json:"totalRevenue"`
	RevenueThisMonth     float64 `json:"revenueThisMonth"`
	RevenueLastMonth     float64 `json:"revenueLastMonth"`
	AveragePurchaseValue float64 `json:"averagePurchaseValue"`
	TotalPurchases       int64   `json:"totalPurchases"`
	PurchasesThisMonth   int64   `json:"purchasesThisMonth"`
}

// ExpiringMember is one row of the expiring-soon listing.
type ExpiringMember struct {
	MemberID        primitive.ObjectID `json:"memberId"`
	FullName        string             `json:"fullName"`
	Mobile          string             `json:"mobile"`
	BalanceHours    float64            `json:"balanceHours"`
	ExpiryDate      time.Time          `json:"expiryDate"`
	DaysUntilExpiry int                `json:"daysUntilExpiry"`
}

// DailyRevenue is one day's bucket of the revenue chart. Date is the
// YYYY-MM-DD bucket key.
type DailyRevenue struct {
	Date      string  `bson:"_id" json:"date"`
	Revenue   float64 `bson:"revenue" json:"revenue"`
	Purchases int64   `bson:"purchases" json:"purchases"`
}

// RevenueChart is the day-bucketed revenue report over [StartDate, EndDate].
// Days without purchases carry no bucket.
type RevenueChart struct {
	StartDate    time.Time      `json:"startDate"`
	EndDate      time.Time      `json:"endDate"`
	Days         []DailyRevenue `json:"days"`
	TotalRevenue float64        `json:"totalRevenue"`
}

// ExportData is a full ledger dump for the export endpoints.
type ExportData struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Members     []*Member        `json:"members"`
	Purchases   []*Purchase      `json:"purchases"`
	Sessions    []*GamingSession `json:"sessions"`
}

// TopMember is one row of a top-N ranking by usage or spend.
type TopMember struct {
	MemberID primitive.ObjectID `bson:"_id" json:"memberId"`
	Mobile   string             `bson:"mobile" json:"mobile"`
	FullName string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Total    float64            `bson:"total" json:"total"`
}
