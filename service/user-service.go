package service

import (
	"fmt"
	"strings"

	"fedman/auth"
	"fedman/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserService struct {
	userRepository *repository.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userRepository: repository.NewUserRepository(db),
	}
}

// GetUserFromAuthHeader resolves the calling user from the auth cookie or a
// bearer token.
func (s *UserService) GetUserFromAuthHeader(c *gin.Context) (*repository.User, error) {
	tokenString, err := c.Cookie("auth")
	if err != nil {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return nil, fmt.Errorf("no auth token present")
		}
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}
	token, err := auth.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims := &auth.Claims{}
	claims.FromJWTClaims(token.Claims)
	if err := claims.Valid(); err != nil {
		return nil, err
	}
	return s.userRepository.GetUserById(claims.UserId)
}
