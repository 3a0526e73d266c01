package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/query"
)

// EarthRadiusMiles converts a distance in miles into radians for $centerSphere.
const EarthRadiusMiles = 3963.2

func bootcampWhat(id primitive.ObjectID) string { return "bootcamp with the id of " + id.Hex() }

func (s *Store) CreateBootcamp(ctx context.Context, b *domain.Bootcamp) (err error) {
	sp, ctx := startSpan(ctx, "bootcamps.insert")
	defer func() { finish(sp, err) }()

	b.CreatedAt = time.Now().UTC()
	if b.Photo == "" {
		b.Photo = domain.DefaultPhoto
	}
	res, err := s.colBootcamps.InsertOne(ctx, b)
	if err != nil {
		return translate(err, "bootcamp")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (s *Store) FindBootcamp(ctx context.Context, id primitive.ObjectID) (_ *domain.Bootcamp, err error) {
	sp, ctx := startSpan(ctx, "bootcamps.find_one", tracer.Tag("bootcamp_id", id.Hex()))
	defer func() { finish(sp, err) }()

	var b domain.Bootcamp
	if err = s.colBootcamps.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, translate(err, bootcampWhat(id))
	}
	return &b, nil
}

// BootcampCourses is Relation for the reverse population of a bootcamp's courses.
var BootcampCourses = query.Relation{
	As: "courses", From: ColCourses, LocalField: "_id", ForeignField: "bootcamp",
	Select: []string{"title", "description"}, Many: true,
}

// FindBootcampView returns the bootcamp with its courses expanded.
func (s *Store) FindBootcampView(ctx context.Context, id primitive.ObjectID) (_ map[string]any, err error) {
	sp, ctx := startSpan(ctx, "bootcamps.find_view", tracer.Tag("bootcamp_id", id.Hex()))
	defer func() { finish(sp, err) }()

	doc, err := findOnePopulated(ctx, s.colBootcamps, id, BootcampCourses)
	if err != nil {
		return nil, translate(err, bootcampWhat(id))
	}
	return doc, nil
}

// UpdateBootcamp applies set/unset and returns the document after the update.
func (s *Store) UpdateBootcamp(ctx context.Context, id primitive.ObjectID, set, unset bson.M) (_ *domain.Bootcamp, err error) {
	sp, ctx := startSpan(ctx, "bootcamps.update", tracer.Tag("bootcamp_id", id.Hex()))
	defer func() { finish(sp, err) }()

	if len(set) == 0 && len(unset) == 0 {
		return s.FindBootcamp(ctx, id)
	}
	upd := bson.M{}
	if len(set) > 0 {
		upd["$set"] = set
	}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	var b domain.Bootcamp
	err = s.colBootcamps.FindOneAndUpdate(ctx, bson.M{"_id": id}, upd,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		return nil, translate(err, bootcampWhat(id))
	}
	return &b, nil
}

// SetBootcampStat sets a derived numeric field, or unsets it when v is nil.
func (s *Store) SetBootcampStat(ctx context.Context, id primitive.ObjectID, field string, v *float64) (err error) {
	sp, ctx := startSpan(ctx, "bootcamps.set_stat", tracer.Tag("field", field))
	defer func() { finish(sp, err) }()

	upd := bson.M{"$unset": bson.M{field: ""}}
	if v != nil {
		upd = bson.M{"$set": bson.M{field: *v}}
	}
	_, err = s.colBootcamps.UpdateOne(ctx, bson.M{"_id": id}, upd)
	return err
}

func (s *Store) DeleteBootcamp(ctx context.Context, id primitive.ObjectID) (err error) {
	sp, ctx := startSpan(ctx, "bootcamps.delete", tracer.Tag("bootcamp_id", id.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colBootcamps.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(errNoDocuments, bootcampWhat(id))
	}
	return nil
}

// FindBootcampsWithin returns bootcamps whose location lies within distance
// miles of the point.
func (s *Store) FindBootcampsWithin(ctx context.Context, lng, lat, miles float64) (_ []domain.Bootcamp, err error) {
	sp, ctx := startSpan(ctx, "bootcamps.geo_within")
	defer func() { finish(sp, err) }()

	filter := bson.M{"location": bson.M{"$geoWithin": bson.M{
		"$centerSphere": bson.A{bson.A{lng, lat}, miles / EarthRadiusMiles},
	}}}
	cur, err := s.colBootcamps.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Bootcamp](ctx, cur)
}

func (s *Store) CountBootcampsByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	return s.colBootcamps.CountDocuments(ctx, bson.M{"user": user})
}
