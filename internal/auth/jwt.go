package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
	ErrWrongKind    = errors.New("token kind not valid for this use")
)

const issuer = "ti4-assistant"

// TokenKind separates access tokens from refresh tokens so a long-lived
// refresh token can never be presented on the API or websocket surface.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims carries the account identity the service needs on every
// authenticated call: the account id, and the display name lobby creation
// uses to pre-fill the in-game player name (a free-text per-game concept,
// distinct from the account).
type Claims struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Kind        TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager handles token creation and validation.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager creates a JWTManager with the given secret.
func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  15 * time.Minute,
		refreshExpiry: 7 * 24 * time.Hour,
	}
}

func (m *JWTManager) generate(userID, displayName string, kind TokenKind, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:      userID,
		DisplayName: displayName,
		Kind:        kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GenerateAccessToken creates a short-lived access token for the given
// account.
func (m *JWTManager) GenerateAccessToken(userID, displayName string) (string, error) {
	return m.generate(userID, displayName, TokenAccess, m.accessExpiry)
}

// GenerateRefreshToken creates a long-lived refresh token. It carries the
// display name too, so refreshing can mint a complete access token without
// a repository round-trip.
func (m *JWTManager) GenerateRefreshToken(userID, displayName string) (string, error) {
	return m.generate(userID, displayName, TokenRefresh, m.refreshExpiry)
}

func (m *JWTManager) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccess parses tokenStr and requires it to be an access token.
func (m *JWTManager) ValidateAccess(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != TokenAccess {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// ValidateRefresh parses tokenStr and requires it to be a refresh token.
func (m *JWTManager) ValidateRefresh(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != TokenRefresh {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// TokenPair holds an access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// GenerateTokenPair creates both tokens for an account.
func (m *JWTManager) GenerateTokenPair(userID, displayName string) (*TokenPair, error) {
	access, err := m.GenerateAccessToken(userID, displayName)
	if err != nil {
		return nil, err
	}
	refresh, err := m.GenerateRefreshToken(userID, displayName)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(m.accessExpiry.Seconds()),
	}, nil
}
