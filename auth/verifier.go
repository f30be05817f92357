package auth

import (
	"crypto/subtle"
	"strings"

	"aqua/apperror"
	"aqua/config"
)

// Credentials is the username/password pair presented at sign-in.
type Credentials struct {
	Username string
	Password string
}

// Verifier decides whether a credential pair identifies the admin.
// The policy is injected so call sites never hardcode an account.
type Verifier interface {
	Verify(creds Credentials) error
}

// StaticVerifier holds exactly one admin account. Usernames compare
// case-insensitively, passwords byte for byte in constant time.
type StaticVerifier struct {
	username string
	password string
}

func NewStaticVerifier(username, password string) *StaticVerifier {
	return &StaticVerifier{username: username, password: password}
}

// NewStaticVerifierFromEnv reads ADMIN_USERNAME and ADMIN_PASSWORD,
// with dev-mode defaults.
func NewStaticVerifierFromEnv() *StaticVerifier {
	return NewStaticVerifier(
		config.Env("ADMIN_USERNAME", "admin"),
		config.Env("ADMIN_PASSWORD", "admin"),
	)
}

func (v *StaticVerifier) Verify(creds Credentials) error {
	userOK := strings.EqualFold(creds.Username, v.username)
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(v.password)) == 1
	if !userOK || !passOK {
		return apperror.Auth("invalid credentials")
	}
	return nil
}

var _ Verifier = (*StaticVerifier)(nil)
