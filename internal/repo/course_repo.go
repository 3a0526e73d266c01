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

// CourseBootcamp expands a course's bootcamp reference.
var CourseBootcamp = query.Relation{
	As: "bootcamp", From: ColBootcamps, LocalField: "bootcamp", ForeignField: "_id",
	Select: []string{"name", "description"},
}

func courseWhat(id primitive.ObjectID) string { return "course with the id of " + id.Hex() }

func (s *Store) CreateCourse(ctx context.Context, c *domain.Course) (err error) {
	sp, ctx := startSpan(ctx, "courses.insert", tracer.Tag("bootcamp_id", c.Bootcamp.Hex()))
	defer func() { finish(sp, err) }()

	c.CreatedAt = time.Now().UTC()
	res, err := s.colCourses.InsertOne(ctx, c)
	if err != nil {
		return translate(err, "course")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (s *Store) FindCourse(ctx context.Context, id primitive.ObjectID) (_ *domain.Course, err error) {
	sp, ctx := startSpan(ctx, "courses.find_one", tracer.Tag("course_id", id.Hex()))
	defer func() { finish(sp, err) }()

	var c domain.Course
	if err = s.colCourses.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, courseWhat(id))
	}
	return &c, nil
}

func (s *Store) FindCourseView(ctx context.Context, id primitive.ObjectID) (_ map[string]any, err error) {
	sp, ctx := startSpan(ctx, "courses.find_view", tracer.Tag("course_id", id.Hex()))
	defer func() { finish(sp, err) }()

	doc, err := findOnePopulated(ctx, s.colCourses, id, CourseBootcamp)
	if err != nil {
		return nil, translate(err, courseWhat(id))
	}
	return doc, nil
}

func (s *Store) ListCoursesByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (_ []domain.Course, err error) {
	sp, ctx := startSpan(ctx, "courses.list_by_bootcamp", tracer.Tag("bootcamp_id", bootcamp.Hex()))
	defer func() { finish(sp, err) }()

	cur, err := s.colCourses.Find(ctx, bson.M{"bootcamp": bootcamp},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Course](ctx, cur)
}

func (s *Store) UpdateCourse(ctx context.Context, id primitive.ObjectID, set bson.M) (_ *domain.Course, err error) {
	sp, ctx := startSpan(ctx, "courses.update", tracer.Tag("course_id", id.Hex()))
	defer func() { finish(sp, err) }()

	if len(set) == 0 {
		return s.FindCourse(ctx, id)
	}
	var c domain.Course
	err = s.colCourses.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, translate(err, courseWhat(id))
	}
	return &c, nil
}

func (s *Store) DeleteCourse(ctx context.Context, id primitive.ObjectID) (err error) {
	sp, ctx := startSpan(ctx, "courses.delete", tracer.Tag("course_id", id.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colCourses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(errNoDocuments, courseWhat(id))
	}
	return nil
}

func (s *Store) DeleteCoursesByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (_ int64, err error) {
	sp, ctx := startSpan(ctx, "courses.delete_by_bootcamp", tracer.Tag("bootcamp_id", bootcamp.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colCourses.DeleteMany(ctx, bson.M{"bootcamp": bootcamp})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) CountCoursesByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (int64, error) {
	return s.colCourses.CountDocuments(ctx, bson.M{"bootcamp": bootcamp})
}

// AverageTuition returns the mean tuition of a bootcamp's courses; ok is
// false when it has none.
func (s *Store) AverageTuition(ctx context.Context, bootcamp primitive.ObjectID) (float64, bool, error) {
	return s.average(ctx, s.colCourses, bootcamp, "tuition")
}
