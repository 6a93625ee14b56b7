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

// Compile-time check to ensure BranchRepository implements the interface
var _ repositories.BranchRepository = (*BranchRepository)(nil)

// BranchRepository handles MongoDB operations for Branch
type BranchRepository struct {
	collection *mongo.Collection
}

// NewBranchRepository creates a new BranchRepository
func NewBranchRepository(db *mongo.Database) *BranchRepository {
	return &BranchRepository{
		collection: db.Collection("branches"),
	}
}

// Create inserts a new branch
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	branch.ID = primitive.NewObjectID()
	branch.CreatedAt = time.Now()
	branch.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, branch)
	return err
}

// FindByID finds a branch by ID
func (r *BranchRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Branch, error) {
	var branch models.Branch
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&branch)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &branch, nil
}

// FindAll retrieves all branches by name
func (r *BranchRepository) FindAll(ctx context.Context) ([]*models.Branch, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var branches []*models.Branch
	if err = cursor.All(ctx, &branches); err != nil {
		return nil, err
	}
	if branches == nil {
		branches = []*models.Branch{}
	}
	return branches, nil
}

// Update updates an existing branch
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	branch.UpdatedAt = time.Now()
	filter := bson.M{"_id": branch.ID}
	update := bson.M{"$set": branch}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
