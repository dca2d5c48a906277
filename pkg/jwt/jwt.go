package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims emitidos por el servicio de autenticación. El motor de ventas solo
// necesita saber qué usuario opera y sobre qué empresa (tenant).
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
}

// Session identidad extraída de un token válido.
type Session struct {
	UserID    string
	CompanyID string
}

// Generate firma un token HS256. Lo usan los tests y herramientas de desarrollo;
// en producción los tokens los emite el servicio de autenticación.
func Generate(secret, issuer string, s Session, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    s.UserID,
		CompanyID: s.CompanyID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve la sesión.
// Un token sin company_id o user_id se considera inválido: no hay tenant por defecto.
func Parse(secret, tokenString string) (Session, error) {
	if secret == "" {
		return Session{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" || claims.CompanyID == "" {
		return Session{}, fmt.Errorf("jwt: token sin user_id o company_id")
	}
	return Session{UserID: claims.UserID, CompanyID: claims.CompanyID}, nil
}
