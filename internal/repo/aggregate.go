package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// average computes the mean of field over the documents that reference
// bootcamp. ok is false when no document matched.
func (s *Store) average(ctx context.Context, coll *mongo.Collection, bootcamp primitive.ObjectID, field string) (_ float64, _ bool, err error) {
	sp, ctx := startSpan(ctx, coll.Name()+".average")
	sp.SetTag("bootcamp_id", bootcamp.Hex())
	defer func() { finish(sp, err) }()

	cur, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "bootcamp", Value: bootcamp}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$bootcamp"},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$" + field}}},
		}}},
	})
	if err != nil {
		return 0, false, err
	}
	var rows []struct {
		Avg *float64 `bson:"avg"`
	}
	if err = cur.All(ctx, &rows); err != nil {
		return 0, false, err
	}
	if len(rows) == 0 || rows[0].Avg == nil {
		return 0, false, nil
	}
	return *rows[0].Avg, true, nil
}
