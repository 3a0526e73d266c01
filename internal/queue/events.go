package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

// Routing keys on the events exchange.
const (
	KeyMailSend        = "mail.send"
	KeyUserRegistered  = "user.registered"
	KeyBootcampCreated = "bootcamp.created"
	KeyBootcampDeleted = "bootcamp.deleted"
)

type UserRegistered struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
	Role   string             `json:"role"`
}

type BootcampCreated struct {
	BootcampID primitive.ObjectID `json:"bootcamp_id"`
	UserID     primitive.ObjectID `json:"user_id"`
	Name       string             `json:"name"`
}

type BootcampDeleted struct {
	BootcampID     primitive.ObjectID `json:"bootcamp_id"`
	CoursesDeleted int64              `json:"courses_deleted"`
	ReviewsDeleted int64              `json:"reviews_deleted"`
}

// MailRequested is the payload of KeyMailSend.
type MailRequested struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}
