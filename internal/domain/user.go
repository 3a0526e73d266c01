package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser      Role = "user"
	RolePublisher Role = "publisher"
	RoleAdmin     Role = "admin"
)

type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"                 json:"_id"`
	Name                string             `bson:"name"                          json:"name"`
	Email               string             `bson:"email"                         json:"email"`
	Role                Role               `bson:"role"                          json:"role"`
	Password            string             `bson:"password,omitempty"            json:"-"` // bcrypt hash
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty"  json:"-"` // sha256 hex
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt"                     json:"createdAt"`
}

// RegisterInput is the public sign-up payload; admin cannot be self-assigned.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role"     validate:"omitempty,oneof=user publisher"`
}

// UserInput is the admin create payload.
type UserInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role"     validate:"omitempty,oneof=user publisher admin"`
}

// UserPatch is the admin update payload. Password changes go through the
// password endpoints so the hash is only recomputed there.
type UserPatch struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *Role   `json:"role"  validate:"omitempty,oneof=user publisher admin"`
}

type DetailsPatch struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

type PasswordReset struct {
	Password string `json:"password" validate:"required,min=5"`
}

func (p UserPatch) Set() map[string]any {
	set := DetailsPatch{Name: p.Name, Email: p.Email}.Set()
	if p.Role != nil {
		set["role"] = *p.Role
	}
	return set
}

func (p DetailsPatch) Set() map[string]any {
	set := map[string]any{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	return set
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email"`
}

func (in RegisterInput) User(hash string) *User {
	return &User{Name: in.Name, Email: in.Email, Role: in.Role, Password: hash}
}

func (in UserInput) User(hash string) *User {
	return &User{Name: in.Name, Email: in.Email, Role: in.Role, Password: hash}
}
