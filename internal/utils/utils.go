package utils

import (
	"errors"
	"time"

	"github.com/gra-paradise/patrol-contest-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT signs a token for an authenticated operator.
func GenerateJWT(operatorID, email, role string, cfg *config.Config) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   operatorID,
		"email": email,
		"role":  role,
		"exp":   expiresAt.Unix(),
	})

	tokenString, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateJWT parses and validates a token, returning its claims.
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
