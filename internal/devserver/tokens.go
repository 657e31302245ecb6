package devserver

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pdv-commerce/storefront/pkg/config"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
)

type accessClaims struct {
	UserType string `json:"tipo"`
	Name     string `json:"nome"`
	jwt.RegisteredClaims
}

// issueToken signs a JWT for the authenticated user.
func issueToken(cfg config.JWTConfig, user User, now time.Time) (string, error) {
	claims := accessClaims{
		UserType: user.Type,
		Name:     user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign token")
	}
	return signed, nil
}

// parseToken verifies the signature and expiry and returns the user id.
func parseToken(cfg config.JWTConfig, raw string) (int64, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unexpected signing method")
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token inválido")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token inválido")
	}
	return userID, nil
}
