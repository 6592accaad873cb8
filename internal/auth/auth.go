// server/internal/auth/auth.go
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultExpiration is the token lifetime used when none is configured.
const DefaultExpiration = 7 * 24 * time.Hour

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Name  string      `json:"name"`
}

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Name   string      `json:"name"`
	jwt.RegisteredClaims
}

// Identity returns the caller described by the claims.
func (c *JWTClaims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Role: c.Role, Name: c.Name}
}

// Hashing
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password must be at most 72 bytes", errs.ErrInvalidInput)
	}
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SecretMatches compares a provided signup secret with the configured one.
// An empty configured secret never matches.
func SecretMatches(expected, provided string) bool {
	expected = strings.TrimSpace(expected)
	provided = strings.TrimSpace(provided)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, expiration time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &TokenManager{secret: []byte(secret), expiration: expiration, now: time.Now}, nil
}

// Issue signs a token embedding the identity.
func (m *TokenManager) Issue(id Identity) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		UserID: id.ID,
		Email:  id.Email,
		Role:   id.Role,
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// IssueFor is Issue for a stored user.
func (m *TokenManager) IssueFor(u *models.User) (string, error) {
	return m.Issue(Identity{ID: u.ID.Hex(), Email: u.Email, Role: u.Role, Name: u.Name})
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
func (m *TokenManager) Verify(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", errs.ErrUnauthenticated)
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: incomplete token claims", errs.ErrUnauthenticated)
	}
	return claims, nil
}
