package services

import (
	"context"
	"sort"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository fakes. They mirror the mongodb implementations'
// contract: lookups that find nothing return mongo.ErrNoDocuments, and the
// err* fields let tests inject a write failure to exercise compensation
// paths.

type fakeMemberRepo struct {
	members   map[primitive.ObjectID]*models.Member
	errUpdate error
}

var _ repositories.MemberRepository = (*fakeMemberRepo)(nil)

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[primitive.ObjectID]*models.Member)}
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if member.ID.IsZero() {
		member.ID = primitive.NewObjectID()
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	clone := *member
	r.members[member.ID] = &clone
	return nil
}

func (r *fakeMemberRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMemberRepo) FindByMobile(ctx context.Context, mobile string) (*models.Member, error) {
	for _, m := range r.members {
		if m.Mobile == mobile {
			clone := *m
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeMemberRepo) FindAll(ctx context.Context, search string, page, limit int) ([]*models.Member, int64, error) {
	out := make([]*models.Member, 0, len(r.members))
	for _, m := range r.members {
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mobile < out[j].Mobile })
	return out, int64(len(out)), nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *models.Member) error {
	if r.errUpdate != nil {
		return r.errUpdate
	}
	if _, ok := r.members[member.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	member.UpdatedAt = time.Now()
	clone := *member
	r.members[member.ID] = &clone
	return nil
}

func (r *fakeMemberRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.members[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.members, id)
	return nil
}

func (r *fakeMemberRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.members)), nil
}

func (r *fakeMemberRepo) CountActive(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	for _, m := range r.members {
		if !m.IsExpiredAt(today) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMemberRepo) CountExpired(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	for _, m := range r.members {
		if m.IsExpiredAt(today) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMemberRepo) CountExpiringBetween(ctx context.Context, from, until time.Time) (int64, error) {
	var n int64
	for _, m := range r.members {
		if m.ExpiryDate != nil && !m.ExpiryDate.Before(from) && m.ExpiryDate.Before(until) {
			n++
		}
	}
	return n, nil
}

func (r *fakeMemberRepo) FindExpiringBetween(ctx context.Context, from, until time.Time) ([]*models.Member, error) {
	out := make([]*models.Member, 0)
	for _, m := range r.members {
		if m.ExpiryDate == nil || m.ExpiryDate.Before(from) || m.ExpiryDate.After(until) {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	return out, nil
}

func (r *fakeMemberRepo) All(ctx context.Context) ([]*models.Member, error) {
	out, _, _ := r.FindAll(ctx, "", 1, 0)
	return out, nil
}

func (r *fakeMemberRepo) SumHours(ctx context.Context) (float64, float64, error) {
	var granted, used float64
	for _, m := range r.members {
		granted += m.HoursGranted
		used += m.HoursUsed
	}
	return granted, used, nil
}

func (r *fakeMemberRepo) TopByHoursUsed(ctx context.Context, limit int) ([]*models.Member, error) {
	out, _, _ := r.FindAll(ctx, "", 1, 0)
	sort.Slice(out, func(i, j int) bool { return out[i].HoursUsed > out[j].HoursUsed })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePurchaseRepo struct {
	purchases map[primitive.ObjectID]*models.Purchase
	errUpdate error
}

var _ repositories.PurchaseRepository = (*fakePurchaseRepo)(nil)

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[primitive.ObjectID]*models.Purchase)}
}

func (r *fakePurchaseRepo) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ID.IsZero() {
		purchase.ID = primitive.NewObjectID()
	}
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()
	clone := *purchase
	r.purchases[purchase.ID] = &clone
	return nil
}

func (r *fakePurchaseRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *p
	return &clone, nil
}

func (r *fakePurchaseRepo) FindAll(ctx context.Context, filter repositories.PurchaseFilter, page, limit int) ([]*models.Purchase, int64, error) {
	out := make([]*models.Purchase, 0, len(r.purchases))
	for _, p := range r.purchases {
		if !filter.MemberID.IsZero() && p.MemberID != filter.MemberID {
			continue
		}
		if filter.RolloverStatus != "" && p.RolloverStatus != filter.RolloverStatus {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.Before(out[j].PurchaseDate) })
	return out, int64(len(out)), nil
}

func (r *fakePurchaseRepo) Update(ctx context.Context, purchase *models.Purchase) error {
	if r.errUpdate != nil {
		return r.errUpdate
	}
	if _, ok := r.purchases[purchase.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	purchase.UpdatedAt = time.Now()
	clone := *purchase
	r.purchases[purchase.ID] = &clone
	return nil
}

func (r *fakePurchaseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.purchases[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.purchases, id)
	return nil
}

func (r *fakePurchaseRepo) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	for id, p := range r.purchases {
		if p.MemberID == memberID {
			delete(r.purchases, id)
		}
	}
	return nil
}

func (r *fakePurchaseRepo) FindRenewal(ctx context.Context, memberID primitive.ObjectID, from, until time.Time, exclude primitive.ObjectID) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.MemberID != memberID || p.ID == exclude {
			continue
		}
		if !p.PurchaseDate.Before(from) && p.PurchaseDate.Before(until) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakePurchaseRepo) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	var n int64
	for _, p := range r.purchases {
		if p.RolloverStatus == models.RolloverPending && p.RolloverDeadline.Before(today) {
			p.RolloverStatus = models.RolloverExpired
			n++
		}
	}
	return n, nil
}

func (r *fakePurchaseRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.purchases)), nil
}

func (r *fakePurchaseRepo) CountByRolloverStatus(ctx context.Context, status models.RolloverStatus) (int64, error) {
	var n int64
	for _, p := range r.purchases {
		if p.RolloverStatus == status {
			n++
		}
	}
	return n, nil
}

func (r *fakePurchaseRepo) CountByDateRange(ctx context.Context, from, until time.Time) (int64, error) {
	var n int64
	for _, p := range r.purchases {
		if !p.PurchaseDate.Before(from) && p.PurchaseDate.Before(until) {
			n++
		}
	}
	return n, nil
}

func (r *fakePurchaseRepo) SumAmount(ctx context.Context, from, until *time.Time) (float64, error) {
	var total float64
	for _, p := range r.purchases {
		if from != nil && p.PurchaseDate.Before(*from) {
			continue
		}
		if until != nil && !p.PurchaseDate.Before(*until) {
			continue
		}
		total += p.AmountPaid
	}
	return total, nil
}

func (r *fakePurchaseRepo) RevenueByDay(ctx context.Context, from, until time.Time) ([]models.DailyRevenue, error) {
	buckets := make(map[string]*models.DailyRevenue)
	for _, p := range r.purchases {
		if p.PurchaseDate.Before(from) || !p.PurchaseDate.Before(until) {
			continue
		}
		key := p.PurchaseDate.UTC().Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &models.DailyRevenue{Date: key}
			buckets[key] = b
		}
		b.Revenue += p.AmountPaid
		b.Purchases++
	}
	out := make([]models.DailyRevenue, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakePurchaseRepo) FindBetween(ctx context.Context, from, until *time.Time) ([]*models.Purchase, error) {
	out := make([]*models.Purchase, 0)
	for _, p := range r.purchases {
		if from != nil && p.PurchaseDate.Before(*from) {
			continue
		}
		if until != nil && !p.PurchaseDate.Before(*until) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.Before(out[j].PurchaseDate) })
	return out, nil
}

func (r *fakePurchaseRepo) TopBySpend(ctx context.Context, limit int) ([]models.TopMember, error) {
	totals := make(map[primitive.ObjectID]*models.TopMember)
	for _, p := range r.purchases {
		t, ok := totals[p.MemberID]
		if !ok {
			t = &models.TopMember{MemberID: p.MemberID, Mobile: p.Mobile}
			totals[p.MemberID] = t
		}
		t.Total += p.AmountPaid
	}
	out := make([]models.TopMember, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions  map[primitive.ObjectID]*models.GamingSession
	errUpdate error
}

var _ repositories.SessionRepository = (*fakeSessionRepo)(nil)

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*models.GamingSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.GamingSession) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.GamingSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSessionRepo) FindActiveByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.GamingSession, error) {
	for _, s := range r.sessions {
		if s.MemberID == memberID && s.Status == models.SessionActive {
			clone := *s
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeSessionRepo) FindActive(ctx context.Context) ([]*models.GamingSession, error) {
	out := make([]*models.GamingSession, 0)
	for _, s := range r.sessions {
		if s.Status == models.SessionActive {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, filter repositories.SessionFilter, page, limit int) ([]*models.GamingSession, int64, error) {
	out := make([]*models.GamingSession, 0)
	for _, s := range r.sessions {
		if !filter.MemberID.IsZero() && s.MemberID != filter.MemberID {
			continue
		}
		if !filter.BranchID.IsZero() && s.BranchID != filter.BranchID {
			continue
		}
		if filter.ActiveOnly && s.Status != models.SessionActive {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *models.GamingSession) error {
	if r.errUpdate != nil {
		return r.errUpdate
	}
	if _, ok := r.sessions[session.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	session.UpdatedAt = time.Now()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	for id, s := range r.sessions {
		if s.MemberID == memberID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *fakeSessionRepo) FindBetween(ctx context.Context, from, until *time.Time) ([]*models.GamingSession, error) {
	out := make([]*models.GamingSession, 0)
	for _, s := range r.sessions {
		if from != nil && s.StartTime.Before(*from) {
			continue
		}
		if until != nil && !s.StartTime.Before(*until) {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeSessionRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.Status == models.SessionActive {
			n++
		}
	}
	return n, nil
}
