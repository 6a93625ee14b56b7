package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique index
// on members.mobile backs the duplicate-mobile conflict check, and the unique
// per-member partial index on active sessions backs the one-active-session
// rule even under concurrent starts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("members").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expiryDate", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("purchases").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "purchaseDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "rolloverStatus", Value: 1}, {Key: "rolloverDeadline", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("gaming_sessions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "active"}),
		},
		{
			Keys: bson.D{{Key: "startTime", Value: -1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("staff").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
