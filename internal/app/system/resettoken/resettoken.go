// Package resettoken issues and verifies password-reset tokens.
//
// A token is a securecookie-signed value carrying the user id and a random
// nonce. Only the nonce and its expiry are stored on the user document, so
// a leaked database row is not enough to reset a password.
package resettoken

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const tokenName = "pwreset"

// ErrInvalid is returned for tokens that fail signature or age checks.
var ErrInvalid = errors.New("reset token is invalid or expired")

// Claims is the payload carried inside a token.
type Claims struct {
	UserID string
	Nonce  string
}

// Signer encodes and decodes tokens with a fixed key and lifetime.
type Signer struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
}

// NewSigner derives a signer from the session key. ttl bounds token age.
func NewSigner(hashKey []byte, ttl time.Duration) *Signer {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(int(ttl.Seconds()))
	return &Signer{sc: sc, ttl: ttl}
}

// TTL returns the token lifetime.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue returns a signed token for userID and the nonce to persist.
func (s *Signer) Issue(userID string) (token, nonce string, err error) {
	nonce = uuid.NewString()
	token, err = s.sc.Encode(tokenName, Claims{UserID: userID, Nonce: nonce})
	if err != nil {
		return "", "", err
	}
	return token, nonce, nil
}

// Parse verifies token and returns its claims.
func (s *Signer) Parse(token string) (Claims, error) {
	var c Claims
	if token == "" {
		return c, ErrInvalid
	}
	if err := s.sc.Decode(tokenName, token, &c); err != nil {
		return Claims{}, ErrInvalid
	}
	if c.UserID == "" || c.Nonce == "" {
		return Claims{}, ErrInvalid
	}
	return c, nil
}
