package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims полезная нагрузка access токена. ID пользователя лежит в RegisteredClaims.Subject
type UserClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"adm,omitempty"`
}
