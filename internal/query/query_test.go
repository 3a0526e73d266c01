package query_test

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/query"
)

var courseSchema = query.Schema{
	Fields: map[string]query.Kind{
		"tuition":     query.Number,
		"scholarship": query.Bool,
		"bootcamp":    query.ObjectID,
		"createdAt":   query.Date,
	},
}

var userSchema = query.Schema{
	Hidden: []string{"password", "resetPasswordToken", "resetPasswordExpire"},
}

func parse(t *testing.T, raw string, s query.Schema) query.Query {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q, err := query.Parse(v, s)
	require.NoError(t, err)
	return q
}

func TestFilter_ComparisonRewritten(t *testing.T) {
	q := parse(t, "tuition[gt]=1000", courseSchema)
	assert.Equal(t, bson.D{{Key: "tuition", Value: bson.D{{Key: "$gt", Value: 1000.0}}}}, q.Filter())
}

func TestFilter_EqualityPassedThrough(t *testing.T) {
	q := parse(t, "careers=Web+Development", query.Schema{})
	assert.Equal(t, bson.D{{Key: "careers", Value: "Web Development"}}, q.Filter())
}

func TestFilter_RangeMergedOnOneField(t *testing.T) {
	q := parse(t, "tuition[gte]=1000&tuition[lte]=5000&scholarship=true", courseSchema)
	f := q.Filter()
	require.Len(t, f, 2)
	assert.Equal(t, bson.E{Key: "scholarship", Value: true}, f[0])
	assert.Equal(t, "tuition", f[1].Key)
	assert.ElementsMatch(t, bson.D{{Key: "$gte", Value: 1000.0}, {Key: "$lte", Value: 5000.0}}, f[1].Value)
}

func TestFilter_InSplitsAndRepeats(t *testing.T) {
	q := parse(t, "careers[in]=Business,UI/UX&careers[in]=Other", query.Schema{})
	assert.Equal(t, bson.D{{Key: "careers", Value: bson.D{
		{Key: "$in", Value: bson.A{"Business", "UI/UX", "Other"}},
	}}}, q.Filter())

	q = parse(t, "minimumSkill=beginner&minimumSkill=advanced", query.Schema{})
	assert.Equal(t, bson.D{{Key: "minimumSkill", Value: bson.D{
		{Key: "$in", Value: bson.A{"beginner", "advanced"}},
	}}}, q.Filter())
}

func TestFilter_DropsOperatorsAndHidden(t *testing.T) {
	q := parse(t, "$where=1&name[$ne]=x&tuition[regex]=.*&password=abc&role=admin", userSchema)
	assert.Equal(t, bson.D{{Key: "role", Value: "admin"}}, q.Filter())
}

func TestFilter_TypedValues(t *testing.T) {
	id := primitive.NewObjectID()
	q := parse(t, "bootcamp="+id.Hex()+"&createdAt[gte]=2024-01-02", courseSchema)
	f := q.Filter()
	assert.Equal(t, bson.E{Key: "bootcamp", Value: id}, f[0])
	assert.Equal(t, bson.D{{Key: "$gte", Value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}}, f[1].Value)
}

func TestFilter_BadValueIsValidationError(t *testing.T) {
	v, _ := url.ParseQuery("tuition[gt]=cheap")
	_, err := query.Parse(v, courseSchema)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestFilter_BaseAnded(t *testing.T) {
	id := primitive.NewObjectID()
	base := bson.E{Key: "bootcamp", Value: id}

	q := parse(t, "", courseSchema)
	assert.Equal(t, bson.D{base}, q.Filter(base))

	q = parse(t, "tuition[lt]=10", courseSchema)
	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{base},
		bson.D{{Key: "tuition", Value: bson.D{{Key: "$lt", Value: 10.0}}}},
	}}}, q.Filter(base))
}

func TestReservedKeysNotFilters(t *testing.T) {
	q := parse(t, "select=name,description&sort=-averageCost,name&page=2&limit=5", query.Schema{})
	assert.Empty(t, q.Filter())
	assert.Equal(t, []string{"name", "description"}, q.Select)
	assert.Equal(t, bson.D{{Key: "averageCost", Value: -1}, {Key: "name", Value: 1}}, q.SortDoc())
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 5, q.Skip())
}

func TestDefaults(t *testing.T) {
	q := parse(t, "page=abc&limit=-4", query.Schema{})
	assert.Equal(t, query.DefaultPage, q.Page)
	assert.Equal(t, query.DefaultLimit, q.Limit)
	assert.Equal(t, 0, q.Skip())
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, q.SortDoc())
	assert.Nil(t, q.Projection(query.Schema{}))
}

func TestPageAndLimitBounds(t *testing.T) {
	q := parse(t, "limit=5000", query.Schema{})
	assert.Equal(t, query.MaxLimit, q.Limit)

	for _, raw := range []string{
		"page=922337203685477580&limit=100",
		"page=9223372036854775807&limit=1000",
		"page=99999999999999999999999",
	} {
		q := parse(t, raw, query.Schema{})
		assert.Equal(t, query.DefaultPage, q.Page, raw)
		assert.GreaterOrEqual(t, q.Skip(), 0, raw)
	}
}

func TestSortDropsHidden(t *testing.T) {
	q := parse(t, "sort=password,-name,resetPasswordToken", userSchema)
	assert.Equal(t, bson.D{{Key: "name", Value: -1}}, q.SortDoc())

	q = parse(t, "sort=password", userSchema)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, q.SortDoc())
}

func TestProjection(t *testing.T) {
	q := parse(t, "", userSchema)
	assert.Equal(t, bson.D{
		{Key: "password", Value: 0},
		{Key: "resetPasswordToken", Value: 0},
		{Key: "resetPasswordExpire", Value: 0},
	}, q.Projection(userSchema))

	q = parse(t, "select=name,password,id,name", userSchema)
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, q.Projection(userSchema))

	q = parse(t, "select=password", userSchema)
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, q.Projection(userSchema))
}

func TestSkipProperty(t *testing.T) {
	for page := 1; page <= 6; page++ {
		for limit := 1; limit <= 30; limit += 7 {
			v := url.Values{}
			v.Set("page", strconv.Itoa(page))
			v.Set("limit", strconv.Itoa(limit))
			q, err := query.Parse(v, query.Schema{})
			require.NoError(t, err)
			assert.Equal(t, (page-1)*limit, q.Skip())
		}
	}
}

func TestPaginateProperty(t *testing.T) {
	for _, page := range []string{"1", "2", "3", "4", "5", "922337203685477580"} {
		for _, limit := range []string{"1", "3", "20", "100000"} {
			for total := int64(0); total <= 25; total++ {
				q := parse(t, "page="+page+"&limit="+limit, query.Schema{})
				page, limit := q.Page, q.Limit
				p := q.Paginate(total)

				wantNext := int64(page*limit) < total
				wantPrev := page > 1 && total > 0
				assert.Equal(t, wantNext, p.Next != nil, "page=%d limit=%d total=%d", page, limit, total)
				assert.Equal(t, wantPrev, p.Prev != nil, "page=%d limit=%d total=%d", page, limit, total)
				if p.Next != nil {
					assert.Equal(t, query.PageLink{Page: page + 1, Limit: limit}, *p.Next)
				}
				if p.Prev != nil {
					assert.Equal(t, query.PageLink{Page: page - 1, Limit: limit}, *p.Prev)
				}
			}
		}
	}
}

func TestPipeline(t *testing.T) {
	q := parse(t, "tuition[gt]=100&select=title,bootcamp&page=3&limit=10", courseSchema)
	rel := &query.Relation{As: "bootcamp", From: "bootcamps", LocalField: "bootcamp", ForeignField: "_id",
		Select: []string{"name", "description"}}

	p := q.Pipeline(courseSchema, q.Filter(), rel)
	require.Len(t, p, 7)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, p[1][0].Value)
	assert.Equal(t, int64(20), p[2][0].Value)
	assert.Equal(t, int64(10), p[3][0].Value)
	assert.Equal(t, bson.D{{Key: "title", Value: 1}, {Key: "bootcamp", Value: 1}}, p[4][0].Value)
	assert.Equal(t, "$lookup", p[5][0].Key)
	assert.Equal(t, "$unwind", p[6][0].Key)

	many := &query.Relation{As: "courses", From: "courses", LocalField: "_id", ForeignField: "bootcamp", Many: true}
	p = q.Pipeline(courseSchema, q.Filter(), many)
	require.Len(t, p, 6)
	assert.Equal(t, "$lookup", p[5][0].Key)

	q = parse(t, "select=title", courseSchema)
	p = q.Pipeline(courseSchema, q.Filter(), rel)
	require.Len(t, p, 5, "no lookup once the local field is not selected")
	assert.Equal(t, "$project", p[4][0].Key)
}
