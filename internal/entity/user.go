package entity

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

const MinPasswordLength = 6

type User struct {
	Base
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
}

func (u *User) Fields() map[string]any {
	return map[string]any{
		"name":          u.Name,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
	}
}

func (u *User) Validate() error {
	return Invalid(validation.ValidateStruct(u,
		validation.Field(&u.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.PasswordHash, validation.Required),
		validation.Field(&u.Role, validation.Required, validation.In(RoleAdmin, RoleClient)),
	))
}

type UserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
	Active   *bool
}
