package admin

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventphotos/internal/pkg/jwt"
)

// Service checks the single shared admin credential and issues session tokens.
type Service struct {
	username     string
	passwordHash []byte
	tokens       *jwt.Service
}

func NewService(username string, passwordHash []byte, tokens *jwt.Service) *Service {
	return &Service{username: username, passwordHash: passwordHash, tokens: tokens}
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Login returns a session token when username and password match.
func (s *Service) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// always pay for bcrypt so a wrong username is not faster to reject
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(s.username, jwt.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate validates a session token and returns the admin username.
func (s *Service) Authenticate(token string) (string, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return "", err
	}
	if claims.Role != jwt.RoleAdmin || claims.Subject != s.username {
		return "", ErrNotAdmin
	}
	return claims.Subject, nil
}

// TokenTTLSeconds is the cookie lifetime matching the token expiry.
func (s *Service) TokenTTLSeconds() int {
	return int(s.tokens.TTL().Seconds())
}
