package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branch represents a gaming hub location.
type Branch struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Location      string             `bson:"location" json:"location"`
	TotalStations int                `bson:"totalStations" json:"totalStations"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
