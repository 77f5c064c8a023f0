package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
	"github.com/AdamRogowski/LanguageLearningApp/internal/repository"
	"github.com/AdamRogowski/LanguageLearningApp/internal/security"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WelcomeMailer sends the post-registration welcome email
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
}

// AuthService handles registration and login
type AuthService struct {
	users  *repository.UserRepository
	tokens *security.TokenIssuer
	email  WelcomeMailer
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, tokens *security.TokenIssuer, email WelcomeMailer) *AuthService {
	return &AuthService{users: users, tokens: tokens, email: email}
}

// Register creates a user account and returns it with a bearer token
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if !emailRegex.MatchString(email) {
		return nil, "", apperr.Validation("invalid email address")
	}
	if len(password) < 8 {
		return nil, "", apperr.Validation("password must be at least 8 characters")
	}
	if name == "" {
		return nil, "", apperr.Validation("name is required")
	}

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", apperr.Validation("an account with this email already exists")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(email, hash, name)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, token, nil
}

// Login verifies credentials and returns the user with a bearer token
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, password) {
		return nil, "", apperr.Forbidden("invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyToken resolves a bearer token to a user id
func (s *AuthService) VerifyToken(token string) (int64, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return 0, apperr.Forbidden("invalid or expired token")
	}
	return userID, nil
}
