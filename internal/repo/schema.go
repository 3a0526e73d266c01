package repo

import "github.com/tazhibayda/bootcamp-service/internal/query"

var BootcampSchema = query.Schema{
	Fields: map[string]query.Kind{
		"_id":           query.ObjectID,
		"user":          query.ObjectID,
		"averageCost":   query.Number,
		"averageRating": query.Number,
		"housing":       query.Bool,
		"jobAssistance": query.Bool,
		"jobGuarantee":  query.Bool,
		"acceptGi":      query.Bool,
		"createdAt":     query.Date,
	},
}

var CourseSchema = query.Schema{
	Fields: map[string]query.Kind{
		"_id":         query.ObjectID,
		"bootcamp":    query.ObjectID,
		"user":        query.ObjectID,
		"tuition":     query.Number,
		"scholarship": query.Bool,
		"createdAt":   query.Date,
	},
}

var ReviewSchema = query.Schema{
	Fields: map[string]query.Kind{
		"_id":       query.ObjectID,
		"bootcamp":  query.ObjectID,
		"user":      query.ObjectID,
		"rating":    query.Number,
		"createdAt": query.Date,
	},
}

var UserSchema = query.Schema{
	Fields: map[string]query.Kind{
		"_id":       query.ObjectID,
		"createdAt": query.Date,
	},
	Hidden: []string{"password", "resetPasswordToken", "resetPasswordExpire"},
}
