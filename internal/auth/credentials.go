package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the shortest password accepted, in characters.
	MinPasswordLength = 8
	// maxPasswordBytes is the bcrypt input limit.
	maxPasswordBytes = 72
	// DefaultCost keeps a single verification in the tens of milliseconds.
	DefaultCost = 10
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	ErrMalformedToken   = errors.New("malformed token")
	ErrExpiredToken     = errors.New("token expired")
)

// Config holds the process-wide credential settings. It is loaded once at
// startup and never changes afterwards.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Cost   int
}

// Credentials hashes and verifies passwords and issues and verifies bearer
// tokens. It is safe for concurrent use.
type Credentials struct {
	secret    []byte
	ttl       time.Duration
	cost      int
	dummyHash []byte
}

// NewCredentials validates cfg and builds a Credentials.
func NewCredentials(cfg Config) (*Credentials, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token signing secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	if cfg.Cost == 0 {
		cfg.Cost = DefaultCost
	}
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cfg.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	c := &Credentials{
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    cfg.TTL,
		cost:   cfg.Cost,
	}

	// Hash of a random value, compared against when the account does not
	// exist so unknown emails cost the same as wrong passwords.
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("failed to seed dummy hash: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(random, cfg.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to build dummy hash: %w", err)
	}
	c.dummyHash = dummy
	return c, nil
}

// TTL returns the lifetime of issued tokens.
func (c *Credentials) TTL() time.Duration {
	return c.ttl
}

// ValidatePassword applies the password length policy.
func ValidatePassword(plain string) error {
	if utf8.RuneCountInString(plain) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(plain) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword returns a salted bcrypt hash of plain. Every call uses a
// fresh salt, so hashing the same password twice gives different strings.
func (c *Credentials) HashPassword(plain string) (string, error) {
	if err := ValidatePassword(plain); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches hash. A malformed hash is
// treated as a mismatch.
func (c *Credentials) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnVerification spends the same time as a real VerifyPassword call and
// always fails.
func (c *Credentials) BurnVerification(plain string) {
	_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(plain))
}

// IssueToken signs an HS256 token for accountID, issued at now and valid
// for the configured TTL. exp only holds whole seconds, so it is rounded
// up: the token never expires before now+ttl.
func (c *Credentials) IssueToken(accountID string, now time.Time) (string, error) {
	exp := now.Add(c.ttl)
	if whole := exp.Truncate(time.Second); !whole.Equal(exp) {
		exp = whole.Add(time.Second)
	}
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// VerifyToken checks the signature and expiry of tokenStr as of now and
// returns the account id it was issued for. The token is expired only once
// now is strictly after exp. Failures are ErrMalformedToken or
// ErrExpiredToken.
func (c *Credentials) VerifyToken(tokenStr string, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}
	// Time claims are checked below; the library treats now == exp as
	// expired.
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.ExpiresAt == nil {
		return "", fmt.Errorf("%w: missing expiry", ErrMalformedToken)
	}
	if now.After(claims.ExpiresAt.Time) {
		return "", ErrExpiredToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims.Subject, nil
}
