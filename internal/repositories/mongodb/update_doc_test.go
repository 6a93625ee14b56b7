package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// marshalSet marshals the $set part of an update document the way the driver
// would, so tests see exactly which fields reach storage.
func marshalSet(t *testing.T, update bson.M) bson.M {
	t.Helper()
	raw, err := bson.Marshal(update["$set"])
	require.NoError(t, err)
	var set bson.M
	require.NoError(t, bson.Unmarshal(raw, &set))
	return set
}

func TestPurchaseUpdateDocClearsRevertedRollover(t *testing.T) {
	// A purchase reverted to pending: the nil pointer fields are dropped from
	// $set by omitempty, so they must be cleared through $unset or the stale
	// values from the failed completion would survive in storage.
	purchase := &models.Purchase{
		ID:             primitive.NewObjectID(),
		MemberID:       primitive.NewObjectID(),
		HoursGranted:   100,
		PurchaseDate:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		RolloverStatus: models.RolloverPending,
	}
	purchase.CalculateExpiryDates()

	update := purchaseUpdateDoc(purchase)

	set := marshalSet(t, update)
	assert.NotContains(t, set, "rolloverHours")
	assert.NotContains(t, set, "rolloverAppliedAt")

	unset, ok := update["$unset"].(bson.M)
	require.True(t, ok, "nil rollover fields must be cleared via $unset")
	assert.Contains(t, unset, "rolloverHours")
	assert.Contains(t, unset, "rolloverAppliedAt")
}

func TestPurchaseUpdateDocKeepsCompletedRollover(t *testing.T) {
	hours := 40.0
	appliedAt := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	purchase := &models.Purchase{
		ID:                primitive.NewObjectID(),
		RolloverStatus:    models.RolloverCompleted,
		RolloverHours:     &hours,
		RolloverAppliedAt: &appliedAt,
	}

	update := purchaseUpdateDoc(purchase)

	set := marshalSet(t, update)
	assert.Contains(t, set, "rolloverHours")
	assert.Contains(t, set, "rolloverAppliedAt")
	assert.NotContains(t, update, "$unset")
}

func TestSessionUpdateDocClearsEndTimeOnReopen(t *testing.T) {
	// A session reopened after a failed deduction has a nil EndTime again;
	// the stored endTime must not survive on an active session.
	session := &models.GamingSession{
		ID:        primitive.NewObjectID(),
		MemberID:  primitive.NewObjectID(),
		StartTime: time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC),
		Status:    models.SessionActive,
	}

	update := sessionUpdateDoc(session)

	set := marshalSet(t, update)
	assert.NotContains(t, set, "endTime")

	unset, ok := update["$unset"].(bson.M)
	require.True(t, ok, "nil end time must be cleared via $unset")
	assert.Contains(t, unset, "endTime")
}

func TestSessionUpdateDocKeepsEndTimeWhenCompleted(t *testing.T) {
	endTime := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	session := &models.GamingSession{
		ID:            primitive.NewObjectID(),
		Status:        models.SessionCompleted,
		EndTime:       &endTime,
		HoursConsumed: 3.5,
	}

	update := sessionUpdateDoc(session)

	set := marshalSet(t, update)
	assert.Contains(t, set, "endTime")
	assert.NotContains(t, update, "$unset")
}
