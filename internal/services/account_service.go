package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/shopdesk-be/internal/auth"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/repository"
)

const emailMaxLen = 255

var emailRegexp = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// AccountServiceProvider defines the interface for account services.
type AccountServiceProvider interface {
	Register(ctx context.Context, input RegisterInput) (models.Account, string, error)
	Login(ctx context.Context, email, password string) (models.Account, string, error)
	GetAccountByID(ctx context.Context, id string) (models.Account, error)
}

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AccountService provides registration and login.
type AccountService struct {
	repo  repository.AccountRepository
	creds *auth.Credentials
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo repository.AccountRepository, creds *auth.Credentials) *AccountService {
	return &AccountService{repo: repo, creds: creds}
}

// NormalizeEmail trims and lower-cases email and checks its shape.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", invalid("email", "email is required")
	}
	if len(normalized) > emailMaxLen {
		return "", invalid("email", "email must be at most %d characters", emailMaxLen)
	}
	if !emailRegexp.MatchString(normalized) || strings.Contains(normalized, "..") {
		return "", invalid("email", "email is not a valid address")
	}
	return normalized, nil
}

// Register creates an account and returns it with a fresh token.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (models.Account, string, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return models.Account{}, "", invalid("username", "username is required")
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return models.Account{}, "", err
	}
	if input.Password == "" {
		return models.Account{}, "", invalid("password", "password is required")
	}

	hash, err := s.creds.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			return models.Account{}, "", invalid("password", "%s", err.Error())
		}
		return models.Account{}, "", err
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.repo.InsertAccountIfAbsent(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Account{}, "", conflict("User already exists")
		}
		return models.Account{}, "", fmt.Errorf("failed to store account: %w", err)
	}

	token, err := s.creds.IssueToken(account.ID, now)
	if err != nil {
		return models.Account{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	// Don't hand the password hash back to callers
	account.PasswordHash = ""
	return account, token, nil
}

// Login verifies the credentials and returns the account with a fresh token.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.Account, string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return models.Account{}, "", invalid("email", "email and password are required")
	}

	account, err := s.repo.FindAccountByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.creds.BurnVerification(password)
			return models.Account{}, "", ErrInvalidCredentials
		}
		return models.Account{}, "", fmt.Errorf("failed to look up account: %w", err)
	}

	if !s.creds.VerifyPassword(password, account.PasswordHash) {
		return models.Account{}, "", ErrInvalidCredentials
	}

	token, err := s.creds.IssueToken(account.ID, time.Now())
	if err != nil {
		return models.Account{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	account.PasswordHash = ""
	return account, token, nil
}

// GetAccountByID retrieves a single account by its ID.
func (s *AccountService) GetAccountByID(ctx context.Context, id string) (models.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		return models.Account{}, err
	}
	account.PasswordHash = ""
	return account, nil
}
