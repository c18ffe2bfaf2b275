package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Principal roles carried in the JWT.
const (
	RoleAdmin        = "admin"
	RoleOrganization = "organization"
)

// JWTClaims defines the payload for the JWT. OrganizationID is empty for
// admin tokens.
type JWTClaims struct {
	Subject        string `json:"subject"`
	Role           string `json:"role"`
	OrganizationID string `json:"organizationID,omitempty"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// JwtSecret is set once at startup from configuration.
var JwtSecret []byte

// TokenLifetime bounds how long an issued token stays valid.
var TokenLifetime = 24 * time.Hour

// GenerateJWT issues a signed token for an admin or organization principal.
func GenerateJWT(subject, role, organizationID string) (string, error) {
	expirationTime := time.Now().Add(TokenLifetime)
	claims := &JWTClaims{
		Subject:        subject,
		Role:           role,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtSecret)
}
