package model

import (
	"strings"
	"time"
)

// User is a portal account. Seeded and Clerk-provisioned users carry no
// password hash and cannot log in with a password.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterPayload is the body of POST /api/auth/register.
type RegisterPayload struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (p *RegisterPayload) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
}

func (p *RegisterPayload) Validate() error {
	return validate.Struct(p)
}

// LoginPayload is the body of POST /api/auth/login.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p *LoginPayload) Normalize() {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
}

func (p *LoginPayload) Validate() error {
	return validate.Struct(p)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// ProfileResult is returned by GET /api/auth/profile.
type ProfileResult struct {
	User *User `json:"user"`
}

// EmptyPayload is bound by routes that take no input.
type EmptyPayload struct{}

func (p *EmptyPayload) Validate() error {
	return nil
}
