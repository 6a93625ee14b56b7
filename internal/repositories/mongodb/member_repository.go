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

// Compile-time check to ensure MemberRepository implements the interface
var _ repositories.MemberRepository = (*MemberRepository)(nil)

// MemberRepository handles MongoDB operations for Member
type MemberRepository struct {
	collection *mongo.Collection
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *mongo.Database) *MemberRepository {
	return &MemberRepository{
		collection: db.Collection("members"),
	}
}

// Create inserts a new member
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	member.ID = primitive.NewObjectID()
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, member)
	return err
}

// FindByID finds a member by ID
func (r *MemberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var member models.Member
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &member, nil
}

// FindByMobile finds a member by normalized mobile number
func (r *MemberRepository) FindByMobile(ctx context.Context, mobile string) (*models.Member, error) {
	var member models.Member
	err := r.collection.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&member)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &member, nil
}

// FindAll retrieves members with optional name/mobile search and pagination
func (r *MemberRepository) FindAll(ctx context.Context, search string, page, limit int) ([]*models.Member, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter = bson.M{"$or": []bson.M{
			{"mobile": bson.M{"$regex": search, "$options": "i"}},
			{"fullName": bson.M{"$regex": search, "$options": "i"}},
		}}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var members []*models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, 0, err
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, total, nil
}

// Update updates an existing member
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = time.Now()
	filter := bson.M{"_id": member.ID}
	update := bson.M{"$set": member}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a member by ID
func (r *MemberRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Count gets the total number of members
func (r *MemberRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountActive counts members whose plan has not expired as of today.
// Members without an expiry date count as active.
func (r *MemberRepository) CountActive(ctx context.Context, today time.Time) (int64, error) {
	filter := bson.M{"$or": []bson.M{
		{"expiryDate": bson.M{"$gte": today}},
		{"expiryDate": bson.M{"$exists": false}},
		{"expiryDate": nil},
	}}
	return r.collection.CountDocuments(ctx, filter)
}

// CountExpired counts members whose plan expired before today
func (r *MemberRepository) CountExpired(ctx context.Context, today time.Time) (int64, error) {
	filter := bson.M{"expiryDate": bson.M{"$ne": nil, "$lt": today}}
	return r.collection.CountDocuments(ctx, filter)
}

// CountExpiringBetween counts members whose plan expires in [from, until]
func (r *MemberRepository) CountExpiringBetween(ctx context.Context, from, until time.Time) (int64, error) {
	filter := bson.M{"expiryDate": bson.M{"$gte": from, "$lte": until}}
	return r.collection.CountDocuments(ctx, filter)
}

// FindExpiringBetween returns members whose plan expires in [from, until],
// soonest first
func (r *MemberRepository) FindExpiringBetween(ctx context.Context, from, until time.Time) ([]*models.Member, error) {
	filter := bson.M{"expiryDate": bson.M{"$gte": from, "$lte": until}}
	opts := options.Find().SetSort(bson.M{"expiryDate": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []*models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, nil
}

// All returns every member without pagination, oldest registration first
func (r *MemberRepository) All(ctx context.Context) ([]*models.Member, error) {
	opts := options.Find().SetSort(bson.M{"registrationDate": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []*models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, nil
}

// SumHours sums granted and used hours across all members
func (r *MemberRepository) SumHours(ctx context.Context) (float64, float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"granted": bson.M{"$sum": "$hoursGranted"},
			"used":    bson.M{"$sum": "$hoursUsed"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Granted float64 `bson:"granted"`
		Used    float64 `bson:"used"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Granted, results[0].Used, nil
}

// TopByHoursUsed returns the members who consumed the most hours
func (r *MemberRepository) TopByHoursUsed(ctx context.Context, limit int) ([]*models.Member, error) {
	opts := options.Find().
		SetSort(bson.M{"hoursUsed": -1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"hoursUsed": bson.M{"$gt": 0}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []*models.Member
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []*models.Member{}
	}
	return members, nil
}
