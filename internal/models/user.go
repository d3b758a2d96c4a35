package models

import (
	"github.com/dgrijalva/jwt-go"
)

// Claims carried by admin session tokens issued by the platform backend.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}
