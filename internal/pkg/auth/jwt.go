// internal/pkg/auth/jwt.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/your-org/ainexus-marketplace/internal/config"
)

// Claims represents the wallet-session JWT claims. Identity here is the
// wallet address; there are no password accounts.
type Claims struct {
	Wallet    string `json:"wallet"`
	SessionID string `json:"session_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager handles wallet-session token operations
type JWTManager struct {
	config *config.Config
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		config: cfg,
	}
}

// GenerateSessionToken mints a session token for a wallet. An empty wallet is
// allowed: browsing and cart management work before a wallet is connected,
// purchase operations reject it later.
func (j *JWTManager) GenerateSessionToken(wallet string) (string, string, error) {
	now := time.Now().UTC()
	sessionID := uuid.New().String()

	claims := &Claims{
		Wallet:    wallet,
		SessionID: sessionID,
		TokenType: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.JWT.SessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.App.Name,
			Subject:   fmt.Sprintf("session:%s", sessionID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.config.JWT.Secret))
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

// ValidateToken validates and parses a session token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.config.JWT.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != "session" {
		return nil, fmt.Errorf("invalid token type: expected session, got %s", claims.TokenType)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token carries no session id")
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
