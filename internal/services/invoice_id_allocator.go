package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/isdelr/shopdesk-be/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// InvoiceIDReader is the part of the invoice repository the allocator reads.
type InvoiceIDReader interface {
	FindMaxInvoiceID(ctx context.Context, prefix string, width int) (string, error)
}

// AllocatorConfig describes the identifier format and the collision retry
// policy.
type AllocatorConfig struct {
	Prefix     string
	Width      int
	Retries    int
	RetryDelay time.Duration
}

// DefaultAllocatorConfig yields INV00001, INV00002, ...
var DefaultAllocatorConfig = AllocatorConfig{
	Prefix:     "INV",
	Width:      5,
	Retries:    5,
	RetryDelay: 10 * time.Millisecond,
}

// InvoiceIDAllocator hands out invoice identifiers one above the highest
// persisted one. The store is the only source of truth; the unique index on
// the identifier turns a lost race between instances into ErrDuplicate,
// which Assign retries with a fresh read.
type InvoiceIDAllocator struct {
	repo    InvoiceIDReader
	cfg     AllocatorConfig
	pattern *regexp.Regexp
	limit   int64

	// mu serialises Assign within this process.
	mu sync.Mutex
}

// NewInvoiceIDAllocator validates cfg and creates an allocator.
func NewInvoiceIDAllocator(repo InvoiceIDReader, cfg AllocatorConfig) (*InvoiceIDAllocator, error) {
	if cfg.Prefix == "" {
		return nil, errors.New("invoice id prefix must not be empty")
	}
	if strings.ContainsAny(cfg.Prefix, "0123456789") {
		return nil, fmt.Errorf("invoice id prefix %q must not contain digits", cfg.Prefix)
	}
	if cfg.Width < 1 || cfg.Width > 18 {
		return nil, fmt.Errorf("invoice id width %d out of range [1, 18]", cfg.Width)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("invoice id retries must not be negative, got %d", cfg.Retries)
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultAllocatorConfig.RetryDelay
	}
	return &InvoiceIDAllocator{
		repo:    repo,
		cfg:     cfg,
		pattern: repository.InvoiceIDPattern(cfg.Prefix, cfg.Width),
		limit:   int64(math.Pow10(cfg.Width)) - 1,
	}, nil
}

// Capacity is the largest sequence number the format can hold.
func (a *InvoiceIDAllocator) Capacity() int64 {
	return a.limit
}

// Format renders sequence number n, e.g. 42 -> INV00042.
func (a *InvoiceIDAllocator) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", a.cfg.Prefix, a.cfg.Width, n)
}

// Valid reports whether id has the configured prefix and width.
func (a *InvoiceIDAllocator) Valid(id string) bool {
	return a.pattern.MatchString(id)
}

// Parse returns the sequence number of id.
func (a *InvoiceIDAllocator) Parse(id string) (int64, error) {
	if !a.Valid(id) {
		return 0, fmt.Errorf("invoice id %q does not match %s", id, a.pattern)
	}
	return strconv.ParseInt(strings.TrimPrefix(id, a.cfg.Prefix), 10, 64)
}

// Current returns the highest persisted sequence number, 0 when there is
// none.
func (a *InvoiceIDAllocator) Current(ctx context.Context) (int64, error) {
	highest, err := a.repo.FindMaxInvoiceID(ctx, a.cfg.Prefix, a.cfg.Width)
	if err != nil {
		return 0, fmt.Errorf("failed to read highest invoice id: %w", err)
	}
	if highest == "" {
		return 0, nil
	}
	return a.Parse(highest)
}

// Next returns the identifier the next invoice would get. It reserves
// nothing.
func (a *InvoiceIDAllocator) Next(ctx context.Context) (string, error) {
	current, err := a.Current(ctx)
	if err != nil {
		return "", err
	}
	if current >= a.limit {
		return "", fmt.Errorf("%w: %s is the last identifier", ErrExhaustedSequence, a.Format(a.limit))
	}
	return a.Format(current + 1), nil
}

// Assign computes the next identifier and passes it to insert. When insert
// reports repository.ErrDuplicate the whole read-compute-insert step is
// repeated, at most Retries more times, before ErrExhaustedRetries.
func (a *InvoiceIDAllocator) Assign(ctx context.Context, insert func(ctx context.Context, id string) error) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var assigned string
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(a.cfg.Retries), retry.NewConstant(a.cfg.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		id, err := a.Next(ctx)
		if err != nil {
			return err
		}
		if err := insert(ctx, id); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Warn().Str("invoice_id", id).Int("attempt", attempt).Msg("Invoice id taken by a concurrent writer, retrying")
				return retry.RetryableError(err)
			}
			return err
		}
		assigned = id
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", fmt.Errorf("%w after %d attempts", ErrExhaustedRetries, attempt)
		}
		return "", err
	}
	return assigned, nil
}
