package admin

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

// SessionClaims are the typed claims carried by admin session tokens.
type SessionClaims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and validates admin session tokens (HS256).
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewTokenService builds a token service with the shared signing key.
func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     "votegate",
		ttl:        ttl,
	}
}

// Generate issues a session token for a logged-in administrator.
func (s *TokenService) Generate(adminID id.AdminID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		AdminID: adminID.String(),
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{"votegate-admin"},
			ID:        uuid.NewString(),
		},
	})

	return token.SignedString(s.signingKey)
}

// Validate parses a session token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}
	return claims, nil
}
