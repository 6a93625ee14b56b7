package mongodb

import (
	"context"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure PurchaseRepository implements the interface
var _ repositories.PurchaseRepository = (*PurchaseRepository)(nil)

// PurchaseRepository handles MongoDB operations for Purchase
type PurchaseRepository struct {
	collection *mongo.Collection
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{
		collection: db.Collection("purchases"),
	}
}

// Create inserts a new purchase
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	purchase.ID = primitive.NewObjectID()
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, purchase)
	return err
}

// FindByID finds a purchase by ID
func (r *PurchaseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &purchase, nil
}

// FindAll retrieves purchases matching the filter, newest first, paginated
func (r *PurchaseRepository) FindAll(ctx context.Context, filter repositories.PurchaseFilter, page, limit int) ([]*models.Purchase, int64, error) {
	query := bson.M{}
	if !filter.MemberID.IsZero() {
		query["memberId"] = filter.MemberID
	}
	if filter.RolloverStatus != "" {
		query["rolloverStatus"] = filter.RolloverStatus
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"purchaseDate": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var purchases []*models.Purchase
	if err = cursor.All(ctx, &purchases); err != nil {
		return nil, 0, err
	}
	if purchases == nil {
		purchases = []*models.Purchase{}
	}
	return purchases, total, nil
}

// Update updates an existing purchase
func (r *PurchaseRepository) Update(ctx context.Context, purchase *models.Purchase) error {
	purchase.UpdatedAt = time.Now()
	filter := bson.M{"_id": purchase.ID}
	result, err := r.collection.UpdateOne(ctx, filter, purchaseUpdateDoc(purchase))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// purchaseUpdateDoc builds the update document for a full purchase write.
// The rollover pointer fields are omitempty, so a nil value never reaches the
// $set document; without an explicit $unset, reverting a rollover to pending
// would leave the old rolloverHours/rolloverAppliedAt persisted.
func purchaseUpdateDoc(purchase *models.Purchase) bson.M {
	update := bson.M{"$set": purchase}
	unset := bson.M{}
	if purchase.RolloverHours == nil {
		unset["rolloverHours"] = ""
	}
	if purchase.RolloverAppliedAt == nil {
		unset["rolloverAppliedAt"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

// Delete deletes a purchase by ID
func (r *PurchaseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByMemberID removes all purchases owned by a member
func (r *PurchaseRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"memberId": memberID})
	return err
}

// FindRenewal finds a purchase by the member dated in [from, until),
// excluding the given purchase
func (r *PurchaseRepository) FindRenewal(ctx context.Context, memberID primitive.ObjectID, from, until time.Time, exclude primitive.ObjectID) (*models.Purchase, error) {
	filter := bson.M{
		"memberId":     memberID,
		"_id":          bson.M{"$ne": exclude},
		"purchaseDate": bson.M{"$gte": from, "$lt": until},
	}
	var purchase models.Purchase
	err := r.collection.FindOne(ctx, filter).Decode(&purchase)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &purchase, nil
}

// ExpireOverdue marks every pending purchase past its rollover deadline as
// expired. A single conditional multi-update keeps the sweep idempotent and
// safe to run alongside per-purchase rollover.
func (r *PurchaseRepository) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	filter := bson.M{
		"rolloverStatus":   models.RolloverPending,
		"rolloverDeadline": bson.M{"$lt": today},
	}
	update := bson.M{"$set": bson.M{
		"rolloverStatus": models.RolloverExpired,
		"updatedAt":      time.Now(),
	}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Count gets the total number of purchases
func (r *PurchaseRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountByRolloverStatus counts purchases in a given rollover state
func (r *PurchaseRepository) CountByRolloverStatus(ctx context.Context, status models.RolloverStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"rolloverStatus": status})
}

// CountByDateRange counts purchases dated in [from, until)
func (r *PurchaseRepository) CountByDateRange(ctx context.Context, from, until time.Time) (int64, error) {
	filter := bson.M{"purchaseDate": bson.M{"$gte": from, "$lt": until}}
	return r.collection.CountDocuments(ctx, filter)
}

// SumAmount sums amount paid over an optional [from, until) date range
func (r *PurchaseRepository) SumAmount(ctx context.Context, from, until *time.Time) (float64, error) {
	match := bson.M{}
	if from != nil || until != nil {
		dateRange := bson.M{}
		if from != nil {
			dateRange["$gte"] = *from
		}
		if until != nil {
			dateRange["$lt"] = *until
		}
		match["purchaseDate"] = dateRange
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amountPaid"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// RevenueByDay buckets revenue and purchase counts per purchase day over
// [from, until)
func (r *PurchaseRepository) RevenueByDay(ctx context.Context, from, until time.Time) ([]models.DailyRevenue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"purchaseDate": bson.M{"$gte": from, "$lt": until},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$purchaseDate"}},
			"revenue":   bson.M{"$sum": "$amountPaid"},
			"purchases": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var days []models.DailyRevenue
	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if days == nil {
		days = []models.DailyRevenue{}
	}
	return days, nil
}

// FindBetween returns purchases with a purchase date in the optional
// [from, until) range, oldest first
func (r *PurchaseRepository) FindBetween(ctx context.Context, from, until *time.Time) ([]*models.Purchase, error) {
	filter := bson.M{}
	if from != nil || until != nil {
		dateRange := bson.M{}
		if from != nil {
			dateRange["$gte"] = *from
		}
		if until != nil {
			dateRange["$lt"] = *until
		}
		filter["purchaseDate"] = dateRange
	}

	opts := options.Find().SetSort(bson.M{"purchaseDate": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var purchases []*models.Purchase
	if err = cursor.All(ctx, &purchases); err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []*models.Purchase{}
	}
	return purchases, nil
}

// TopBySpend returns the members who paid the most, grouped across purchases
func (r *PurchaseRepository) TopBySpend(ctx context.Context, limit int) ([]models.TopMember, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":    "$memberId",
			"mobile": bson.M{"$first": "$mobile"},
			"total":  bson.M{"$sum": "$amountPaid"},
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.TopMember
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.TopMember{}
	}
	return results, nil
}
