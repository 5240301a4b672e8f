package auth

import (
	"errors"
	"time"

	"payflow/config"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	PayerID string `json:"payer_id"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// GenerateAccessToken mints a payer token. In production tokens come from
// the platform that owns payer identity; this is used by tests and tooling.
func GenerateAccessToken(cfg *config.JWTConfig, payerID string) (string, error) {
	claims := Claims{
		PayerID: payerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AccessSecret))
}

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.AccessSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
