package repo

import (
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

const (
	idxBootcampName = "uniq_name"
	idxUserEmail    = "uniq_email"
	idxReviewPair   = "uniq_bootcamp_user"
)

// dupMessages names the unique constraints clients can hit.
var dupMessages = map[string]string{
	idxBootcampName: "Duplicate field value entered: a bootcamp with this name already exists",
	idxUserEmail:    "Duplicate field value entered: email already registered",
	idxReviewPair:   "User has already reviewed this bootcamp",
}

var dupIndexRe = regexp.MustCompile(`index: (\S+) dup key`)

func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}

// translate maps driver errors onto apperr kinds. what names the resource for
// not-found messages (e.g. "bootcamp with the id of 65f...").
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("No %s", what)
	case IsDup(err):
		return duplicate(err)
	}
	return err
}

func duplicate(err error) error {
	m := dupIndexRe.FindStringSubmatch(err.Error())
	if m == nil {
		return apperr.Duplicate("Duplicate field value entered")
	}
	if msg, ok := dupMessages[m[1]]; ok {
		return apperr.Duplicate("%s", msg)
	}
	return apperr.Duplicate("Duplicate field value entered: %s", indexFields(m[1]))
}

// indexFields recovers field names from a default index name ("a_1_b_-1" -> "a, b").
func indexFields(name string) string {
	parts := strings.Split(name, "_")
	var fields []string
	for i := 0; i+1 < len(parts); i += 2 {
		fields = append(fields, parts[i])
	}
	if len(fields) == 0 {
		return name
	}
	return strings.Join(fields, ", ")
}
