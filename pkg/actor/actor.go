// Package actor resolves who is looking at an evaluation from an optional
// session token: nobody, a user outside the company, or a user attached to
// it.
package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

var ErrInvalidToken = errors.New("actor: invalid token")

const Issuer = "portail-rse"

// Rattachement links a user to a company.
type Rattachement struct {
	Siren    string `json:"siren"`
	Habilite bool   `json:"habilite,omitempty"`
}

// Claims are the session token claims. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Entreprises []Rattachement `json:"entreprises,omitempty"`
}

// Resolver signs and verifies HS256 session tokens.
type Resolver struct {
	secret []byte
	now    func() time.Time
}

func NewResolver(secret []byte) (*Resolver, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("actor: session secret must be at least 32 bytes, got %d", len(secret))
	}
	return &Resolver{secret: secret, now: time.Now}, nil
}

// Issue signs a token for userID valid for ttl.
func (r *Resolver) Issue(userID string, entreprises []Rattachement, ttl time.Duration) (string, error) {
	now := r.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Entreprises: entreprises,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// Resolve maps token to the actor viewing siren. An empty token is an
// anonymous visitor.
func (r *Resolver) Resolve(token, siren string) (reglementation.Actor, error) {
	if token == "" {
		return reglementation.Actor{Kind: reglementation.ActorAnonymous}, nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return r.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	)
	if err != nil {
		return reglementation.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return reglementation.Actor{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	for _, e := range claims.Entreprises {
		if e.Siren == siren {
			return reglementation.Actor{
				Kind:        reglementation.ActorAttached,
				UserID:      claims.Subject,
				Habilitated: e.Habilite,
			}, nil
		}
	}
	return reglementation.Actor{Kind: reglementation.ActorUnattached, UserID: claims.Subject}, nil
}
