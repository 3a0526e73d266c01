// Package query turns list-endpoint query strings into typed MongoDB queries.
//
// A request such as
//
//	GET /bootcamps?careers[in]=Business,UI/UX&averageCost[lte]=10000&select=name,averageCost&sort=-averageCost&page=2
//
// is parsed into a Query whose conditions are checked against a Schema, so
// operator names never travel from the client to the store as strings.
package query

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 1000
)

var reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}

var (
	keyRe   = regexp.MustCompile(`^([A-Za-z0-9_.]+)(?:\[([a-z]+)\])?$`)
	fieldRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

type Kind int

const (
	String Kind = iota
	Number
	Bool
	Date
	ObjectID
)

type Op string

const (
	Eq  Op = "eq"
	Gt  Op = "gt"
	Gte Op = "gte"
	Lt  Op = "lt"
	Lte Op = "lte"
	In  Op = "in"
)

var ops = map[string]Op{"gt": Gt, "gte": Gte, "lt": Lt, "lte": Lte, "in": In}

// Schema describes the filterable fields of a collection.
type Schema struct {
	Fields map[string]Kind
	// Hidden fields are never filtered on and never returned.
	Hidden []string
}

func (s Schema) kind(field string) Kind {
	if k, ok := s.Fields[field]; ok {
		return k
	}
	return String
}

func (s Schema) hidden(field string) bool {
	for _, h := range s.Hidden {
		if h == field || strings.HasPrefix(field, h+".") {
			return true
		}
	}
	return false
}

// Condition is one node of the filter AST. Values has exactly one element
// except for In.
type Condition struct {
	Field  string
	Op     Op
	Values []any
}

type SortField struct {
	Field string
	Desc  bool
}

type Query struct {
	Conditions []Condition
	Select     []string
	Sort       []SortField
	Page       int
	Limit      int
}

func (q Query) Skip() int { return (q.Page - 1) * q.Limit }

// Parse builds a Query from raw URL parameters. Keys that are not field names
// or carry an unknown operator are dropped; values that cannot be coerced to
// the field's kind are a validation error.
func Parse(v url.Values, s Schema) (Query, error) {
	q := Query{
		Select: fields(v.Get("select"), false),
		Page:   positive(v.Get("page"), DefaultPage),
		Limit:  positive(v.Get("limit"), DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// a page whose offset does not fit is as malformed as a non-number
	if q.Page > math.MaxInt32/q.Limit {
		q.Page = DefaultPage
	}
	for _, f := range sortFields(v.Get("sort")) {
		if !s.hidden(f.Field) {
			q.Sort = append(q.Sort, f)
		}
	}
	if len(q.Sort) == 0 {
		q.Sort = []SortField{{Field: "createdAt", Desc: true}}
	}

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if reserved[k] {
			continue
		}
		m := keyRe.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		field := canonical(m[1])
		if s.hidden(field) {
			continue
		}
		op := Eq
		if m[2] != "" {
			var ok bool
			if op, ok = ops[m[2]]; !ok {
				continue
			}
		}

		raw := v[k]
		if op == In {
			raw = splitAll(raw)
		}
		// a repeated equality key means "any of"
		if op == Eq && len(raw) > 1 {
			op = In
		}
		if len(raw) == 0 {
			continue
		}

		vals := make([]any, 0, len(raw))
		for _, r := range raw {
			cv, err := coerce(s.kind(field), r)
			if err != nil {
				return Query{}, apperr.Validation("Invalid value %q for field %s", r, field)
			}
			vals = append(vals, cv)
		}
		if op != In {
			vals = vals[:1]
		}
		q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Values: vals})
	}
	return q, nil
}

// positive parses a page/limit value, falling back to def when it is
// malformed or not at least 1.
func positive(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func canonical(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func fields(list string, allowDash bool) []string {
	var out []string
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		name := f
		if allowDash {
			name = strings.TrimPrefix(f, "-")
		}
		if name == "" || !fieldRe.MatchString(name) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func sortFields(list string) []SortField {
	var out []SortField
	for _, f := range fields(list, true) {
		desc := strings.HasPrefix(f, "-")
		out = append(out, SortField{Field: canonical(strings.TrimPrefix(f, "-")), Desc: desc})
	}
	return out
}

func splitAll(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func coerce(k Kind, s string) (any, error) {
	switch k {
	case Number:
		return strconv.ParseFloat(s, 64)
	case Bool:
		return strconv.ParseBool(s)
	case Date:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", s)
	case ObjectID:
		return primitive.ObjectIDFromHex(s)
	default:
		return s, nil
	}
}
