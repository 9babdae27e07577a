package auth

import (
	"time"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// AccessClaims are the claims carried in an access token.
// v4.local tokens are encrypted, so clients cannot read them.
type AccessClaims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
