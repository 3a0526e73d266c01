package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title"         json:"title"`
	Text      string             `bson:"text"          json:"text"`
	Rating    int                `bson:"rating"        json:"rating"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp"      json:"bootcamp"`
	User      primitive.ObjectID `bson:"user"          json:"user"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
}

type ReviewInput struct {
	Title  string `json:"title"  validate:"required,max=100"`
	Text   string `json:"text"   validate:"required"`
	Rating *int   `json:"rating" validate:"required,min=1,max=10"`
}

type ReviewPatch struct {
	Title  *string `json:"title"  validate:"omitempty,min=1,max=100"`
	Text   *string `json:"text"   validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=10"`
}

func (in ReviewInput) Review(bootcamp, user primitive.ObjectID) *Review {
	return &Review{
		Title:    in.Title,
		Text:     in.Text,
		Rating:   *in.Rating,
		Bootcamp: bootcamp,
		User:     user,
	}
}

func (p ReviewPatch) Set() map[string]any {
	set := map[string]any{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Text != nil {
		set["text"] = *p.Text
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	return set
}
