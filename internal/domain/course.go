package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title"         json:"title"`
	Description  string             `bson:"description"   json:"description"`
	Weeks        string             `bson:"weeks"         json:"weeks"`
	Tuition      float64            `bson:"tuition"       json:"tuition"`
	MinimumSkill string             `bson:"minimumSkill"  json:"minimumSkill"`
	Scholarship  bool               `bson:"scholarship"   json:"scholarship"`
	Bootcamp     primitive.ObjectID `bson:"bootcamp"      json:"bootcamp"`
	User         primitive.ObjectID `bson:"user"          json:"user"`
	CreatedAt    time.Time          `bson:"createdAt"     json:"createdAt"`
}

type CourseInput struct {
	Title        string   `json:"title"        validate:"required"`
	Description  string   `json:"description"  validate:"required"`
	Weeks        string   `json:"weeks"        validate:"required"`
	Tuition      *float64 `json:"tuition"      validate:"required,gte=0"`
	MinimumSkill string   `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	Scholarship  bool     `json:"scholarship"`
}

type CoursePatch struct {
	Title        *string  `json:"title"        validate:"omitempty,min=1"`
	Description  *string  `json:"description"  validate:"omitempty,min=1"`
	Weeks        *string  `json:"weeks"        validate:"omitempty,min=1"`
	Tuition      *float64 `json:"tuition"      validate:"omitempty,gte=0"`
	MinimumSkill *string  `json:"minimumSkill" validate:"omitempty,oneof=beginner intermediate advanced"`
	Scholarship  *bool    `json:"scholarship"`
}

func (in CourseInput) Course(bootcamp, owner primitive.ObjectID) *Course {
	return &Course{
		Title:        in.Title,
		Description:  in.Description,
		Weeks:        in.Weeks,
		Tuition:      *in.Tuition,
		MinimumSkill: in.MinimumSkill,
		Scholarship:  in.Scholarship,
		Bootcamp:     bootcamp,
		User:         owner,
	}
}

func (p CoursePatch) Set() map[string]any {
	set := map[string]any{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Weeks != nil {
		set["weeks"] = *p.Weeks
	}
	if p.Tuition != nil {
		set["tuition"] = *p.Tuition
	}
	if p.MinimumSkill != nil {
		set["minimumSkill"] = *p.MinimumSkill
	}
	if p.Scholarship != nil {
		set["scholarship"] = *p.Scholarship
	}
	return set
}
