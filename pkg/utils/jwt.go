package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "hisab-api"

// Token uses, carried in the "use" claim
const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// ErrWrongTokenUse is returned when a refresh token is presented as an access token or the reverse.
var ErrWrongTokenUse = errors.New("token used for the wrong purpose")

// JWTClaims are the claims carried by both token kinds. Email is empty on refresh tokens.
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Use    string    `json:"use"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 session tokens.
type JWTManager struct {
	secret  []byte
	access  time.Duration
	refresh time.Duration
}

// NewJWTManager creates a manager with the given lifetimes
func NewJWTManager(secret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), access: accessExpiry, refresh: refreshExpiry}
}

func (m *JWTManager) sign(userID uuid.UUID, email, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		Use:    use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) parse(raw, use string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Use != use {
		return nil, ErrWrongTokenUse
	}
	if claims.UserID == uuid.Nil || claims.Subject != claims.UserID.String() {
		return nil, fmt.Errorf("token subject %q does not name a user", claims.Subject)
	}
	return claims, nil
}

// GenerateAccessToken signs a short-lived token for API calls
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return m.sign(userID, email, useAccess, m.access)
}

// GenerateRefreshToken signs a long-lived token that can only mint new access tokens
func (m *JWTManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return m.sign(userID, "", useRefresh, m.refresh)
}

// ValidateAccessToken verifies an access token and returns its claims
func (m *JWTManager) ValidateAccessToken(raw string) (*JWTClaims, error) {
	return m.parse(raw, useAccess)
}

// ValidateRefreshToken verifies a refresh token and returns the user it was issued to
func (m *JWTManager) ValidateRefreshToken(raw string) (uuid.UUID, error) {
	claims, err := m.parse(raw, useRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}
