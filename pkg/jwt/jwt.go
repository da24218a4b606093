package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwt: token inválido")
	ErrExpiredToken = errors.New("jwt: token expirado")
)

// leeway tolerancia de reloj entre emisor y servicio.
const leeway = 30 * time.Second

// Claims incluye los claims estándar JWT más la identidad del actor.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Actor nombre con el que se firman custodios, solicitantes y aprobadores: username o, en su defecto, el id.
func (c *Claims) Actor() string {
	if c.Username != "" {
		return c.Username
	}
	return c.UserID
}

// Generate firma un token HS256 para el actor. Lo usan las herramientas de soporte y los tests;
// en producción los tokens los emite el proveedor de identidad con el mismo secreto.
func Generate(secret, userID, username, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma, expiración y, si issuer no está vacío, el emisor.
// Devuelve ErrExpiredToken o ErrInvalidToken envolviendo la causa.
func Parse(secret, tokenString, issuer string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: secret vacío", ErrInvalidToken)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" && claims.Username == "" {
		return nil, fmt.Errorf("%w: sin identidad de actor", ErrInvalidToken)
	}
	return &claims, nil
}
