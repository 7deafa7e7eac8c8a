package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-relay/domain"
	"chat-relay/errors"
)

// CustomClaims defines the structure of the data stored inside the JWT.
// The user_id claim is the participant token used everywhere downstream:
// authorship, direct-message naming, presence.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier validates tokens issued by the account service. The relay never
// issues credentials itself; it only checks the signature and expiry and
// extracts the identity.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates the signature and expiration of a JWT string.
// Any failure maps onto ErrAuthentication so the transport rejects the
// connection before admission, without leaking the underlying cause.
func (v *Verifier) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return domain.Identity{}, errors.ErrAuthentication
	}

	return domain.Identity{Name: claims.UserID, Roles: claims.Roles}, nil
}

// GenerateToken creates a signed JWT for a specific user. The relay itself
// only verifies; this lives here for operational tooling and tests.
func GenerateToken(secret, userID string, roles []string, duration time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-relay",
		},
	}

	// HS256 (HMAC with SHA256), same algorithm the account service signs with.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
