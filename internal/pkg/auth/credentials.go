package auth

import (
	"crypto/subtle"
	"errors"
)

// CredentialVerifier checks an admin login attempt
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// StaticCredentials is the single configured administrator identity
type StaticCredentials struct {
	username     string
	passwordHash string
}

// NewStaticCredentials builds a verifier from config. A bcrypt hash is used as
// given; otherwise the plain password is hashed once here with hasher, or at
// DefaultBcryptCost when hasher is nil.
func NewStaticCredentials(username, password, passwordHash string, hasher *PasswordHasher) (*StaticCredentials, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}

	if passwordHash == "" {
		if password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		if hasher == nil {
			hasher = &PasswordHasher{cost: DefaultBcryptCost}
		}
		hashed, err := hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		passwordHash = hashed
	}

	return &StaticCredentials{username: username, passwordHash: passwordHash}, nil
}

// Verify compares the username in constant time and the password with bcrypt
func (c *StaticCredentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password
	passOK := CheckPassword(c.passwordHash, password)
	return userOK && passOK
}
