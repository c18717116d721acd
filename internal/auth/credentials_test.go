package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestCredentials(t *testing.T, ttl time.Duration) *Credentials {
	t.Helper()
	c, err := NewCredentials(Config{Secret: []byte("test-secret"), TTL: ttl, Cost: bcrypt.MinCost})
	require.NoError(t, err)
	return c
}

func TestNewCredentials_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   Config
		errFn require.ErrorAssertionFunc
	}{
		{"valid", Config{Secret: []byte("s"), TTL: time.Hour, Cost: bcrypt.MinCost}, require.NoError},
		{"empty secret", Config{TTL: time.Hour, Cost: bcrypt.MinCost}, require.Error},
		{"zero ttl", Config{Secret: []byte("s"), Cost: bcrypt.MinCost}, require.Error},
		{"negative ttl", Config{Secret: []byte("s"), TTL: -time.Second, Cost: bcrypt.MinCost}, require.Error},
		{"cost too low", Config{Secret: []byte("s"), TTL: time.Hour, Cost: 2}, require.Error},
		{"cost too high", Config{Secret: []byte("s"), TTL: time.Hour, Cost: 40}, require.Error},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCredentials(tt.cfg)
			tt.errFn(t, err)
		})
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCredentials(t, time.Hour)

	for _, p := range []string{"12345678", "correct horse battery staple", "пароль-пароль", strings.Repeat("x", 72)} {
		hash, err := c.HashPassword(p)
		require.NoError(t, err)
		assert.True(t, c.VerifyPassword(p, hash), "password %q should verify", p)
		assert.False(t, c.VerifyPassword(p+"!", hash))
		assert.False(t, c.VerifyPassword(strings.ToUpper(p)+"X", hash))
	}
}

func TestHashPassword_SaltUniqueness(t *testing.T) {
	t.Parallel()
	c := newTestCredentials(t, time.Hour)

	h1, err := c.HashPassword("s3cretpassword")
	require.NoError(t, err)
	h2, err := c.HashPassword("s3cretpassword")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, c.VerifyPassword("s3cretpassword", h1))
	assert.True(t, c.VerifyPassword("s3cretpassword", h2))
}

func TestHashPassword_LengthPolicy(t *testing.T) {
	t.Parallel()
	c := newTestCredentials(t, time.Hour)

	_, err := c.HashPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = c.HashPassword("")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	// Seven runes, fourteen bytes.
	_, err = c.HashPassword("ééééééé")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = c.HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	t.Parallel()
	c, err := NewCredentials(Config{Secret: []byte("s"), TTL: time.Hour, Cost: 5})
	require.NoError(t, err)

	hash, err := c.HashPassword("password123")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()
	c := newTestCredentials(t, time.Hour)

	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		assert.False(t, c.VerifyPassword("password123", hash))
	}
}

func TestVerifyToken_Expiry(t *testing.T) {
	t.Parallel()
	ttl := time.Hour
	c := newTestCredentials(t, ttl)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := c.IssueToken("account-1", t0)
	require.NoError(t, err)

	id, err := c.VerifyToken(tok, t0)
	require.NoError(t, err)
	assert.Equal(t, "account-1", id)

	id, err = c.VerifyToken(tok, t0.Add(ttl-time.Second))
	require.NoError(t, err)
	assert.Equal(t, "account-1", id)

	id, err = c.VerifyToken(tok, t0.Add(ttl))
	require.NoError(t, err, "valid up to and including t0+ttl")
	assert.Equal(t, "account-1", id)

	_, err = c.VerifyToken(tok, t0.Add(ttl+time.Second))
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyToken_ExpirySubSecond(t *testing.T) {
	t.Parallel()
	ttl := time.Hour
	c := newTestCredentials(t, ttl)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 900_000_000, time.UTC)

	tok, err := c.IssueToken("account-1", t0)
	require.NoError(t, err)

	for _, at := range []time.Duration{0, ttl - time.Second, ttl - time.Millisecond, ttl} {
		id, err := c.VerifyToken(tok, t0.Add(at))
		require.NoError(t, err, "at t0+%s", at)
		assert.Equal(t, "account-1", id)
	}

	_, err = c.VerifyToken(tok, t0.Add(ttl+time.Second))
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()
	c := newTestCredentials(t, time.Hour)
	now := time.Now()

	tok, err := c.IssueToken("account-1", now)
	require.NoError(t, err)

	other, err := NewCredentials(Config{Secret: []byte("other-secret"), TTL: time.Hour, Cost: bcrypt.MinCost})
	require.NoError(t, err)
	foreign, err := other.IssueToken("account-1", now)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "account-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	noneTok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	noSubjectTok, err := noSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "account-1"})
	noExpiryTok, err := noExpiry.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, bad := range map[string]string{
		"empty":          "",
		"garbage":        "not.a.jwt",
		"wrong secret":   foreign,
		"tampered":       tampered,
		"alg none":       noneTok,
		"missing sub":    noSubjectTok,
		"missing expiry": noExpiryTok,
	} {
		_, err := c.VerifyToken(bad, now)
		assert.ErrorIs(t, err, ErrMalformedToken, name)
	}
}

func TestVerifyToken_ExpiredWithWrongSecretIsMalformed(t *testing.T) {
	t.Parallel()
	c := newTestCredentials(t, time.Hour)
	other, err := NewCredentials(Config{Secret: []byte("other"), TTL: time.Minute, Cost: bcrypt.MinCost})
	require.NoError(t, err)

	t0 := time.Now()
	tok, err := other.IssueToken("account-1", t0)
	require.NoError(t, err)

	_, err = c.VerifyToken(tok, t0.Add(time.Hour))
	require.ErrorIs(t, err, ErrMalformedToken)
}
