package auth

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	AccessTokenExpirationTime = time.Hour * 12
	RoleAdmin                 = "admin"
)

var (
	ErrMissingToken = errors.New("request does not contain an access token")
	ErrInvalidToken = errors.New("access token is invalid or expired")
)

type JWTClaim struct {
	Id   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT signs an access token for id carrying role.
func GenerateJWT(secret, id, role string, ttl time.Duration) (string, int64, error) {
	if ttl <= 0 {
		ttl = AccessTokenExpirationTime
	}
	expirationTime := time.Now().Add(ttl)
	claims := JWTClaim{
		Id:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", 0, errors.Wrap(err, "sign token")
	}
	return tokenString, expirationTime.Unix(), nil
}

// ValidateToken checks the signature and expiry of a signed access token.
func ValidateToken(secret, signedToken string) (JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return JWTClaim{}, errors.Wrap(ErrInvalidToken, err.Error())
	}

	claim, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return JWTClaim{}, ErrInvalidToken
	}
	return *claim, nil
}

// ExtractToken reads the token from the Authorization header, with or
// without the Bearer scheme.
func ExtractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
