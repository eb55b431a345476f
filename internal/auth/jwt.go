package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/config"
)

// SessionClaims are the claims carried by a session token
type SessionClaims struct {
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`
	WorkspaceID string `json:"wid,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator validates and issues HS256 session tokens
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a validator from auth configuration
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}
}

// ValidateToken parses and validates a session token and returns the user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	userCtx := &UserContext{
		UserID:      userID,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}

	if claims.WorkspaceID != "" {
		wid, err := uuid.Parse(claims.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace claim: %w", err)
		}
		userCtx.WorkspaceID = &wid
	}

	return userCtx, nil
}

// IssueToken creates a signed session token for a user
func (v *JWTValidator) IssueToken(user *UserContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Email: user.Email,
		Name:  user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    v.issuer,
			Audience:  jwt.ClaimStrings{v.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if user.WorkspaceID != nil {
		claims.WorkspaceID = user.WorkspaceID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
