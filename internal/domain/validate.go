package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

var websiteRe = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("website", func(fl validator.FieldLevel) bool {
		return websiteRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("career", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, c := range Careers {
			if c == s {
				return true
			}
		}
		return false
	})
	return v
}

// messages is keyed by "<entity>.<field>.<tag>"; entity is the struct name
// without its Input/Patch suffix.
var messages = map[string]string{
	"Bootcamp.name.required":        "Please add a bootcamp name",
	"Bootcamp.name.min":             "Bootcamp name cannot be less than 5 characters",
	"Bootcamp.name.max":             "Bootcamp name cannot be more than 20 characters",
	"Bootcamp.description.required": "Please add a description",
	"Bootcamp.description.max":      "Bootcamp description cannot exceed 500 characters",
	"Bootcamp.description.min":      "Please add a description",
	"Bootcamp.website.website":      "Please use a valid URL with HTTP or HTTPS",
	"Bootcamp.phone.max":            "Phone number can not be longer than 20 characters",
	"Bootcamp.email.email":          "Please add a valid email",
	"Bootcamp.address.required":     "Please add an address",
	"Bootcamp.careers.required":     "Please add at least one career",
	"Bootcamp.careers.min":          "Please add at least one career",
	"Bootcamp.careers[].career":     "Career must be one of: " + strings.Join(Careers, ", "),

	"Course.title.required":        "Please add a course title",
	"Course.description.required":  "Please add a course description",
	"Course.weeks.required":        "Please add number of weeks",
	"Course.tuition.required":      "Please add a tuition cost",
	"Course.tuition.gte":           "Tuition cost cannot be negative",
	"Course.minimumSkill.required": "Please add a minimum skill",
	"Course.minimumSkill.oneof":    "Minimum skill must be beginner, intermediate or advanced",

	"Review.title.required":  "Please add a title for the review",
	"Review.title.max":       "Review title cannot be more than 100 characters",
	"Review.text.required":   "Please add some text",
	"Review.rating.required": "Please add a rating between 1 and 10",
	"Review.rating.min":      "Rating must be at least 1",
	"Review.rating.max":      "Rating can not be more than 10",

	"User.name.required":     "Please add a name",
	"User.email.required":    "Please add an email",
	"User.email.email":       "Please add a valid email",
	"User.password.required": "Please add a password",
	"User.password.min":      "Password must be at least 6 characters",
	"User.role.oneof":        "Role is not allowed",

	"PasswordChange.currentPassword.required": "Please provide the current password",
	"PasswordChange.newPassword.required":     "Please add a new password",
	"PasswordChange.newPassword.min":          "Password must be at least 6 characters",
	"PasswordReset.password.required":         "Please add a password",
	"PasswordReset.password.min":              "Password must be at least 5 characters",
}

var entityAlias = map[string]string{
	"Register":       "User",
	"Details":        "User",
	"ForgotPassword": "User",
}

// Validate checks v against its validate tags and returns an apperr validation
// error listing one message per failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Validation("%s", err.Error())
	}
	fields := make(map[string]string, len(ves))
	keys := make([]string, 0, len(ves))
	for _, fe := range ves {
		field := fieldPath(fe.Namespace())
		if _, seen := fields[field]; seen {
			continue
		}
		fields[field] = message(entity(fe.StructNamespace()), field, fe)
		keys = append(keys, field)
	}
	return apperr.ValidationFields(fields, keys)
}

func entity(structNS string) string {
	name := strings.SplitN(structNS, ".", 2)[0]
	name = strings.TrimSuffix(strings.TrimSuffix(name, "Input"), "Patch")
	if alias, ok := entityAlias[name]; ok {
		return alias
	}
	return name
}

// fieldPath drops the struct name and collapses slice indexes: "BootcampInput.careers[2]" -> "careers[]".
func fieldPath(ns string) string {
	parts := strings.SplitN(ns, ".", 2)
	if len(parts) == 2 {
		ns = parts[1]
	}
	if i := strings.IndexByte(ns, '['); i >= 0 {
		return ns[:i] + "[]"
	}
	return ns
}

func message(entity, field string, fe validator.FieldError) string {
	if m, ok := messages[entity+"."+field+"."+fe.Tag()]; ok {
		return m
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
