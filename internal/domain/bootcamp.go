package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPhoto = "no-photo.jpg"

var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Machine Learning",
	"Game Development",
	"Business",
	"Other",
}

// Location is a GeoJSON point plus the address parts returned by the geocoder.
type Location struct {
	Type             string    `bson:"type"             json:"type"`
	Coordinates      []float64 `bson:"coordinates"      json:"coordinates"` // [lng, lat]
	FormattedAddress string    `bson:"formattedAddress" json:"formattedAddress"`
	Street           string    `bson:"street"           json:"street"`
	City             string    `bson:"city"             json:"city"`
	State            string    `bson:"state"            json:"state"`
	Zipcode          string    `bson:"zipcode"          json:"zipcode"`
	Country          string    `bson:"country"          json:"country"`
}

type Bootcamp struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"           json:"_id"`
	Name          string             `bson:"name"                    json:"name"`
	Slug          string             `bson:"slug"                    json:"slug"`
	Description   string             `bson:"description"             json:"description"`
	Website       string             `bson:"website,omitempty"       json:"website,omitempty"`
	Phone         string             `bson:"phone,omitempty"         json:"phone,omitempty"`
	Email         string             `bson:"email,omitempty"         json:"email,omitempty"`
	Location      *Location          `bson:"location,omitempty"      json:"location,omitempty"`
	Careers       []string           `bson:"careers"                 json:"careers"`
	AverageRating *float64           `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	AverageCost   *float64           `bson:"averageCost,omitempty"   json:"averageCost,omitempty"`
	Photo         string             `bson:"photo"                   json:"photo"`
	Housing       bool               `bson:"housing"                 json:"housing"`
	JobAssistance bool               `bson:"jobAssistance"           json:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee"            json:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi"                json:"acceptGi"`
	User          primitive.ObjectID `bson:"user"                    json:"user"`
	CreatedAt     time.Time          `bson:"createdAt"               json:"createdAt"`
}

// BootcampInput is the create payload. Address is geocoded and never stored.
type BootcampInput struct {
	Name          string   `json:"name"          validate:"required,min=5,max=20"`
	Description   string   `json:"description"   validate:"required,max=500"`
	Website       string   `json:"website"       validate:"omitempty,website"`
	Phone         string   `json:"phone"         validate:"omitempty,max=20"`
	Email         string   `json:"email"         validate:"omitempty,email"`
	Address       string   `json:"address"       validate:"required"`
	Careers       []string `json:"careers"       validate:"required,min=1,dive,career"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// BootcampPatch is the partial update payload; nil fields are left unchanged.
type BootcampPatch struct {
	Name          *string   `json:"name"          validate:"omitempty,min=5,max=20"`
	Description   *string   `json:"description"   validate:"omitempty,min=1,max=500"`
	Website       *string   `json:"website"       validate:"omitempty,website"`
	Phone         *string   `json:"phone"         validate:"omitempty,max=20"`
	Email         *string   `json:"email"         validate:"omitempty,email"`
	Address       *string   `json:"address"`
	Careers       *[]string `json:"careers"       validate:"omitempty,min=1,dive,career"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGi      *bool     `json:"acceptGi"`
}

func (in BootcampInput) Bootcamp(owner primitive.ObjectID) *Bootcamp {
	return &Bootcamp{
		Name:          in.Name,
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Careers:       in.Careers,
		Photo:         DefaultPhoto,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGi:      in.AcceptGi,
		User:          owner,
	}
}

// Set returns the $set document for the non-nil fields. Name and address are
// handled by the caller because they drive slug and location.
func (p BootcampPatch) Set() map[string]any {
	set := map[string]any{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Website != nil {
		set["website"] = *p.Website
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Careers != nil {
		set["careers"] = *p.Careers
	}
	if p.Housing != nil {
		set["housing"] = *p.Housing
	}
	if p.JobAssistance != nil {
		set["jobAssistance"] = *p.JobAssistance
	}
	if p.JobGuarantee != nil {
		set["jobGuarantee"] = *p.JobGuarantee
	}
	if p.AcceptGi != nil {
		set["acceptGi"] = *p.AcceptGi
	}
	return set
}
