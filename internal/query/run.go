package query

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the part of *mongo.Collection the runner needs.
type Collection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

type PageLink struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageLink `json:"next,omitempty"`
	Prev *PageLink `json:"prev,omitempty"`
}

type Result struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       []bson.M   `json:"data"`
}

// Paginate computes the prev/next links for a match count of total.
func (q Query) Paginate(total int64) Pagination {
	var p Pagination
	if int64(q.Page)*int64(q.Limit) < total {
		p.Next = &PageLink{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 && total > 0 {
		p.Prev = &PageLink{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

type Options struct {
	Base     []bson.E  // filter AND-ed with the parsed conditions
	Populate *Relation // at most one expansion
}

// Run counts every match of the filter (ignoring select, paging and populate)
// and fetches the requested page with the same filter.
func Run(ctx context.Context, coll Collection, s Schema, q Query, opts Options) (*Result, error) {
	filter := q.Filter(opts.Base...)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Aggregate(ctx, q.Pipeline(s, filter, opts.Populate))
	if err != nil {
		return nil, err
	}
	data := []bson.M{}
	if err := cur.All(ctx, &data); err != nil {
		return nil, err
	}

	return &Result{
		Success:    true,
		Count:      len(data),
		Pagination: q.Paginate(total),
		Data:       data,
	}, nil
}
