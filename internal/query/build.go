package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var storeOps = map[Op]string{Gt: "$gt", Gte: "$gte", Lt: "$lt", Lte: "$lte", In: "$in", Eq: "$eq"}

// Filter renders the condition AST as a store filter. Conditions on the same
// field are merged into one operator document. base, when non-empty, is
// AND-ed with the parsed conditions.
func (q Query) Filter(base ...bson.E) bson.D {
	var order []string
	byField := map[string][]Condition{}
	for _, c := range q.Conditions {
		if _, ok := byField[c.Field]; !ok {
			order = append(order, c.Field)
		}
		byField[c.Field] = append(byField[c.Field], c)
	}

	parsed := bson.D{}
	for _, f := range order {
		conds := byField[f]
		if len(conds) == 1 && conds[0].Op == Eq {
			parsed = append(parsed, bson.E{Key: f, Value: conds[0].Values[0]})
			continue
		}
		opDoc := bson.D{}
		for _, c := range conds {
			if c.Op == In {
				opDoc = append(opDoc, bson.E{Key: storeOps[In], Value: bson.A(c.Values)})
				continue
			}
			opDoc = append(opDoc, bson.E{Key: storeOps[c.Op], Value: c.Values[0]})
		}
		parsed = append(parsed, bson.E{Key: f, Value: opDoc})
	}

	if len(base) == 0 {
		return parsed
	}
	if len(parsed) == 0 {
		return bson.D(base)
	}
	return bson.D{{Key: "$and", Value: bson.A{bson.D(base), parsed}}}
}

// Projection returns the $project document, or nil when every field is returned.
func (q Query) Projection(s Schema) bson.D {
	if len(q.Select) == 0 {
		if len(s.Hidden) == 0 {
			return nil
		}
		p := bson.D{}
		for _, h := range s.Hidden {
			p = append(p, bson.E{Key: h, Value: 0})
		}
		return p
	}
	p := bson.D{}
	seen := map[string]bool{}
	for _, f := range q.Select {
		f = canonical(f)
		if s.hidden(f) || seen[f] {
			continue
		}
		seen[f] = true
		p = append(p, bson.E{Key: f, Value: 1})
	}
	if len(p) == 0 {
		p = append(p, bson.E{Key: "_id", Value: 1})
	}
	return p
}

func (q Query) SortDoc() bson.D {
	d := bson.D{}
	for _, f := range q.Sort {
		dir := 1
		if f.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

// Relation declares one expansion of a referenced document (or of the
// documents referencing this one, when Many is set).
type Relation struct {
	As           string
	From         string
	LocalField   string
	ForeignField string
	Select       []string
	Many         bool
}

// Stages returns the $lookup (and $unwind for single relations) for r.
func (r Relation) Stages() []bson.D {
	sub := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$eq", Value: bson.A{"$" + r.ForeignField, "$$ref"}},
		}}}}},
	}
	if len(r.Select) > 0 {
		p := bson.D{}
		for _, f := range r.Select {
			p = append(p, bson.E{Key: f, Value: 1})
		}
		sub = append(sub, bson.D{{Key: "$project", Value: p}})
	}
	out := []bson.D{{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: r.From},
		{Key: "let", Value: bson.D{{Key: "ref", Value: "$" + r.LocalField}}},
		{Key: "pipeline", Value: sub},
		{Key: "as", Value: r.As},
	}}}}
	if !r.Many {
		out = append(out, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + r.As},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}
	return out
}

// keeps reports whether field survives the projection.
func (q Query) keeps(s Schema, field string) bool {
	if field == "_id" || len(q.Select) == 0 {
		return !s.hidden(field)
	}
	for _, e := range q.Projection(s) {
		if e.Key == field {
			return true
		}
	}
	return false
}

// Pipeline is the paged aggregation: match, sort, skip, limit, project, then
// the optional relation lookup. The lookup is skipped when select drops its
// local field.
func (q Query) Pipeline(s Schema, filter bson.D, populate *Relation) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: q.SortDoc()}},
		{{Key: "$skip", Value: int64(q.Skip())}},
		{{Key: "$limit", Value: int64(q.Limit)}},
	}
	if proj := q.Projection(s); proj != nil {
		p = append(p, bson.D{{Key: "$project", Value: proj}})
	}
	if populate != nil && q.keeps(s, populate.LocalField) {
		p = append(p, populate.Stages()...)
	}
	return p
}
