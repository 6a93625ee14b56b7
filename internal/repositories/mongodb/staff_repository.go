package mongodb

import (
	"context"
	"time"

	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure StaffRepository implements the interface
var _ repositories.StaffRepository = (*StaffRepository)(nil)

// StaffRepository handles MongoDB operations for Staff
type StaffRepository struct {
	collection *mongo.Collection
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db *mongo.Database) *StaffRepository {
	return &StaffRepository{
		collection: db.Collection("staff"),
	}
}

// Create inserts a new staff account
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	staff.ID = primitive.NewObjectID()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, staff)
	return err
}

// FindByID finds a staff account by ID
func (r *StaffRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Staff, error) {
	var staff models.Staff
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&staff)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &staff, nil
}

// FindByEmail finds a staff account by email
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var staff models.Staff
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&staff)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &staff, nil
}

// Update updates an existing staff account
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now()
	filter := bson.M{"_id": staff.ID}
	update := bson.M{"$set": staff}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Count gets the total number of staff accounts
func (r *StaffRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
