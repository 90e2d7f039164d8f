package auth

import (
	"errors"
	"strings"
)

// Fallback admin settings used when configuration leaves them unset.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "wedding"
	DefaultAdminToken    = "authenticated"
)

// ErrInvalidCredentials is returned when a username/password pair does not match.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// AdminConfig bundles the shared admin credentials.
type AdminConfig struct {
	Username string
	Password string
	Token    string
}

// Admin checks the single shared admin login and its static bearer token.
// The token never expires and is the same for every login.
type Admin struct {
	username string
	password string
	token    string
}

// NewAdmin constructs an Admin, applying fallbacks for blank fields.
func NewAdmin(cfg AdminConfig) *Admin {
	return &Admin{
		username: fallback(cfg.Username, DefaultAdminUsername),
		password: fallback(cfg.Password, DefaultAdminPassword),
		token:    fallback(cfg.Token, DefaultAdminToken),
	}
}

// Login returns the bearer token when username and password match exactly.
func (a *Admin) Login(username, password string) (string, error) {
	if username != a.username || password != a.password {
		return "", ErrInvalidCredentials
	}
	return a.token, nil
}

// Validate reports whether token is the admin bearer token.
func (a *Admin) Validate(token string) bool {
	return token != "" && token == a.token
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
