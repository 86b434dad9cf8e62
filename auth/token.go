package auth

import (
	"fmt"
	"time"

	"tabulator/config"
	"tabulator/service"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = time.Hour * 24 * 3

type Claims struct {
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
	Exp    int64  `json:"exp"`
}

func (claims *Claims) FromJWTClaims(jwtClaims jwt.Claims) error {
	mapClaims, ok := jwtClaims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("unexpected claims type %T", jwtClaims)
	}
	userId, ok := mapClaims["user_id"].(float64)
	if !ok {
		return fmt.Errorf("token has no user_id")
	}
	role, ok := mapClaims["role"].(string)
	if !ok {
		return fmt.Errorf("token has no role")
	}
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return fmt.Errorf("token has no exp")
	}
	claims.UserId = int(userId)
	claims.Role = role
	claims.Exp = int64(exp)
	return nil
}

func (claims *Claims) Valid() error {
	if time.Now().Unix() > claims.Exp {
		return jwt.ErrTokenExpired
	}
	if !service.Role(claims.Role).Valid() {
		return fmt.Errorf("unknown role %q", claims.Role)
	}
	return nil
}

func (claims *Claims) Actor() service.Actor {
	return service.Actor{ID: claims.UserId, Role: service.Role(claims.Role)}
}

func CreateToken(actor service.Actor) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"user_id": actor.ID,
			"role":    string(actor.Role),
			"exp":     time.Now().Add(tokenLifetime).Unix(),
		})

	tokenString, err := token.SignedString([]byte(config.Env().JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(config.Env().JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	if err := claims.FromJWTClaims(token.Claims); err != nil {
		return nil, err
	}
	if err := claims.Valid(); err != nil {
		return nil, err
	}
	return claims, nil
}
