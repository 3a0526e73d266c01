package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/bootcamp-service/internal/query"
)

var errNoDocuments = mongo.ErrNoDocuments

// findOnePopulated loads one document by id with rel expanded.
func findOnePopulated(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, rel query.Relation) (map[string]any, error) {
	p := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}}
	p = append(p, rel.Stages()...)

	cur, err := coll.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return docs[0], nil
}
