package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baryc/quote-service/internal/domain/model"
)

// ErrVersionConflict is returned when another writer already saved the
// snapshot version being inserted.
var ErrVersionConflict = errors.New("pricing snapshot version already exists")

// PricingSnapshotDocument is the stored form of a pricing snapshot.
type PricingSnapshotDocument struct {
	ID       primitive.ObjectID    `bson:"_id,omitempty"`
	Active   bool                  `bson:"active"`
	Snapshot model.PricingSnapshot `bson:",inline"`
}

// PricingSnapshotsRepository stores every pricing snapshot version; the
// newest active one is the configuration in force.
type PricingSnapshotsRepository struct {
	collection *mongo.Collection
}

// NewPricingSnapshotsRepository creates a new pricing snapshots repository.
func NewPricingSnapshotsRepository(db *MongoDB) *PricingSnapshotsRepository {
	return &PricingSnapshotsRepository{
		collection: db.PricingSnapshots,
	}
}

// GetActive returns the active snapshot, or nil when none was saved yet.
func (r *PricingSnapshotsRepository) GetActive(ctx context.Context) (*model.PricingSnapshot, error) {
	var doc PricingSnapshotDocument
	err := r.collection.FindOne(
		ctx,
		bson.M{"active": true},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active pricing snapshot: %w", err)
	}
	return &doc.Snapshot, nil
}

// Save inserts snap as the new active version and deactivates the older
// ones. snap.Version must be unused; otherwise ErrVersionConflict is returned
// and nothing changes.
func (r *PricingSnapshotsRepository) Save(ctx context.Context, snap *model.PricingSnapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	doc := PricingSnapshotDocument{
		ID:       primitive.NewObjectID(),
		Active:   true,
		Snapshot: *snap,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %d", ErrVersionConflict, snap.Version)
		}
		return fmt.Errorf("insert pricing snapshot: %w", err)
	}

	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"active": true, "version": bson.M{"$lt": snap.Version}},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return fmt.Errorf("deactivate previous pricing snapshots: %w", err)
	}
	return nil
}

// History returns snapshots, newest first. limit <= 0 returns all of them.
func (r *PricingSnapshotsRepository) History(ctx context.Context, limit int) ([]model.PricingSnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list pricing snapshots: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []PricingSnapshotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	snaps := make([]model.PricingSnapshot, 0, len(docs))
	for _, d := range docs {
		snaps = append(snaps, d.Snapshot)
	}
	return snaps, nil
}
