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

// Compile-time check to ensure SessionRepository implements the interface
var _ repositories.SessionRepository = (*SessionRepository)(nil)

// SessionRepository handles MongoDB operations for GamingSession
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{
		collection: db.Collection("gaming_sessions"),
	}
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.GamingSession) error {
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, session)
	return err
}

// FindByID finds a session by ID
func (r *SessionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.GamingSession, error) {
	var session models.GamingSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &session, nil
}

// FindActiveByMemberID finds the member's open session, if any
func (r *SessionRepository) FindActiveByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.GamingSession, error) {
	filter := bson.M{
		"memberId": memberID,
		"status":   models.SessionActive,
	}
	var session models.GamingSession
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &session, nil
}

// FindActive retrieves all open sessions, oldest first
func (r *SessionRepository) FindActive(ctx context.Context) ([]*models.GamingSession, error) {
	opts := options.Find().SetSort(bson.M{"startTime": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.SessionActive}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*models.GamingSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*models.GamingSession{}
	}
	return sessions, nil
}

// FindAll retrieves sessions matching the filter, newest first, paginated
func (r *SessionRepository) FindAll(ctx context.Context, filter repositories.SessionFilter, page, limit int) ([]*models.GamingSession, int64, error) {
	query := bson.M{}
	if !filter.MemberID.IsZero() {
		query["memberId"] = filter.MemberID
	}
	if !filter.BranchID.IsZero() {
		query["branchId"] = filter.BranchID
	}
	if filter.ActiveOnly {
		query["status"] = models.SessionActive
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"startTime": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var sessions []*models.GamingSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, 0, err
	}
	if sessions == nil {
		sessions = []*models.GamingSession{}
	}
	return sessions, total, nil
}

// Update updates an existing session
func (r *SessionRepository) Update(ctx context.Context, session *models.GamingSession) error {
	session.UpdatedAt = time.Now()
	filter := bson.M{"_id": session.ID}
	result, err := r.collection.UpdateOne(ctx, filter, sessionUpdateDoc(session))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// sessionUpdateDoc builds the update document for a full session write.
// endTime is omitempty, so reopening a session (nil EndTime) needs an explicit
// $unset or the old end time would survive in storage on an active session.
func sessionUpdateDoc(session *models.GamingSession) bson.M {
	update := bson.M{"$set": session}
	if session.EndTime == nil {
		update["$unset"] = bson.M{"endTime": ""}
	}
	return update
}

// DeleteByMemberID removes all sessions owned by a member
func (r *SessionRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"memberId": memberID})
	return err
}

// CountActive counts open sessions
func (r *SessionRepository) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": models.SessionActive})
}

// FindBetween returns sessions with a start time in the optional
// [from, until) range, oldest first
func (r *SessionRepository) FindBetween(ctx context.Context, from, until *time.Time) ([]*models.GamingSession, error) {
	filter := bson.M{}
	if from != nil || until != nil {
		dateRange := bson.M{}
		if from != nil {
			dateRange["$gte"] = *from
		}
		if until != nil {
			dateRange["$lt"] = *until
		}
		filter["startTime"] = dateRange
	}

	opts := options.Find().SetSort(bson.M{"startTime": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*models.GamingSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*models.GamingSession{}
	}
	return sessions, nil
}
