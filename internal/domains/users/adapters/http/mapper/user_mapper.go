package mapper

import (
	userdomain "github.com/Apurer/storefront-api/internal/domains/users/domain"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
)

// User is the public view of an account; the password hash never leaves the domain.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register is the payload for POST /auth/register.
type Register struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r Register) ToInput() userports.RegisterInput {
	return userports.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

// Login is the payload for POST /auth/login.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse wraps the user returned by register, login and me.
type AuthResponse struct {
	User User `json:"user"`
}

func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{ID: user.ID, Name: user.Name, Email: user.Email}
}
