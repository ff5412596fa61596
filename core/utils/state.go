package utils

import (
	"fmt"
	"time"

	"go-outlook-starter/core/constants"

	"github.com/golang-jwt/jwt/v5"
)

// SignState wraps an OAuth state nonce in a short-lived signed token so a
// forged callback cannot carry an attacker-chosen state.
func SignState(nonce string, secret string) (string, error) {
	claims := jwt.MapClaims{
		"nonce": nonce,
		"exp":   time.Now().Add(constants.OAuthStateTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseState validates the signed state token and returns the nonce.
func ParseState(state string, secret string) (string, error) {
	token, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected state claims")
	}
	nonce, ok := claims["nonce"].(string)
	if !ok || nonce == "" {
		return "", fmt.Errorf("state token has no nonce")
	}
	return nonce, nil
}
