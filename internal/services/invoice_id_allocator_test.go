package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/repository"
	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticReader always reports the same highest identifier.
type staticReader struct {
	highest string
	err     error
}

func (r staticReader) FindMaxInvoiceID(context.Context, string, int) (string, error) {
	return r.highest, r.err
}

func newAllocator(t *testing.T, repo services.InvoiceIDReader) *services.InvoiceIDAllocator {
	t.Helper()
	cfg := services.DefaultAllocatorConfig
	cfg.RetryDelay = time.Millisecond
	a, err := services.NewInvoiceIDAllocator(repo, cfg)
	require.NoError(t, err)
	return a
}

func insertInvoice(store *repository.MemoryStore) func(context.Context, string) error {
	return func(ctx context.Context, id string) error {
		return store.InsertInvoice(ctx, models.Invoice{ID: id, InvoiceID: id, Customer: "c", Date: "2024-01-01"})
	}
}

func TestNewInvoiceIDAllocatorConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     services.AllocatorConfig
		wantErr bool
	}{
		{name: "defaults", cfg: services.DefaultAllocatorConfig},
		{name: "empty prefix", cfg: services.AllocatorConfig{Width: 5}, wantErr: true},
		{name: "digit in prefix", cfg: services.AllocatorConfig{Prefix: "INV2", Width: 5}, wantErr: true},
		{name: "zero width", cfg: services.AllocatorConfig{Prefix: "INV"}, wantErr: true},
		{name: "width too large", cfg: services.AllocatorConfig{Prefix: "INV", Width: 19}, wantErr: true},
		{name: "negative retries", cfg: services.AllocatorConfig{Prefix: "INV", Width: 5, Retries: -1}, wantErr: true},
		{name: "zero retries", cfg: services.AllocatorConfig{Prefix: "INV", Width: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.NewInvoiceIDAllocator(staticReader{}, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInvoiceIDFormat(t *testing.T) {
	a := newAllocator(t, staticReader{})

	assert.Equal(t, "INV00001", a.Format(1))
	assert.Equal(t, "INV00042", a.Format(42))
	assert.Equal(t, "INV99999", a.Format(99999))
	assert.Equal(t, int64(99999), a.Capacity())

	assert.True(t, a.Valid("INV00042"))
	for _, id := range []string{"", "INV42", "INV000042", "inv00042", "XINV00042", "INV0004a"} {
		assert.False(t, a.Valid(id), id)
	}

	n, err := a.Parse("INV00042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	_, err = a.Parse("INV42")
	assert.Error(t, err)
}

func TestInvoiceIDNext(t *testing.T) {
	tests := []struct {
		name    string
		highest string
		want    string
		errIs   error
	}{
		{name: "empty store", highest: "", want: "INV00001"},
		{name: "after first", highest: "INV00001", want: "INV00002"},
		{name: "carries digits", highest: "INV00042", want: "INV00043"},
		{name: "crosses a power of ten", highest: "INV09999", want: "INV10000"},
		{name: "last one", highest: "INV99998", want: "INV99999"},
		{name: "exhausted", highest: "INV99999", errIs: services.ErrExhaustedSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAllocator(t, staticReader{highest: tt.highest})
			got, err := a.Next(context.Background())
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvoiceIDNextReadError(t *testing.T) {
	boom := errors.New("boom")
	a := newAllocator(t, staticReader{err: boom})
	_, err := a.Next(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestInvoiceIDPreviewDoesNotReserve(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a := newAllocator(t, store)

	for i := 0; i < 3; i++ {
		id, err := a.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INV00001", id)
	}

	id, err := a.Assign(ctx, insertInvoice(store))
	require.NoError(t, err)
	assert.Equal(t, "INV00001", id)

	id, err = a.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV00002", id)
}

func TestInvoiceIDAssignSequential(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a := newAllocator(t, store)

	for _, want := range []string{"INV00001", "INV00002", "INV00003"} {
		id, err := a.Assign(ctx, insertInvoice(store))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestInvoiceIDAssignConcurrent(t *testing.T) {
	const n = 50
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a := newAllocator(t, store)

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = a.Assign(ctx, insertInvoice(store))
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %s", ids[i])
		seen[ids[i]] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[a.Format(int64(i))], "missing %s", a.Format(int64(i)))
	}
}

// Two allocators over one store stand in for two processes racing on the
// same collection: only the unique index keeps them apart.
func TestInvoiceIDAssignAcrossInstances(t *testing.T) {
	const n = 20
	ctx := context.Background()
	store := repository.NewMemoryStore()
	cfg := services.DefaultAllocatorConfig
	cfg.Retries = 2 * n
	cfg.RetryDelay = time.Millisecond
	first, err := services.NewInvoiceIDAllocator(store, cfg)
	require.NoError(t, err)
	second, err := services.NewInvoiceIDAllocator(store, cfg)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ids []string
	for i := 0; i < n; i++ {
		a := first
		if i%2 == 1 {
			a = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := a.Assign(ctx, insertInvoice(store))
			assert.NoError(t, err)
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, n)
	invoices, err := store.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Len(t, invoices, n)
}

func TestInvoiceIDAssignRetriesOnStaleRead(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	a := newAllocator(t, store)

	// A concurrent writer takes INV00001 between our read and our insert.
	var attempts []string
	id, err := a.Assign(ctx, func(ctx context.Context, id string) error {
		attempts = append(attempts, id)
		if len(attempts) == 1 {
			require.NoError(t, insertInvoice(store)(ctx, id))
		}
		return insertInvoice(store)(ctx, id)
	})
	require.NoError(t, err)
	assert.Equal(t, "INV00002", id)
	assert.Equal(t, []string{"INV00001", "INV00002"}, attempts)
}

func TestInvoiceIDAssignExhaustsRetries(t *testing.T) {
	cfg := services.DefaultAllocatorConfig
	cfg.Retries = 3
	cfg.RetryDelay = time.Millisecond
	a, err := services.NewInvoiceIDAllocator(staticReader{highest: "INV00007"}, cfg)
	require.NoError(t, err)

	calls := 0
	_, err = a.Assign(context.Background(), func(context.Context, string) error {
		calls++
		return repository.ErrDuplicate
	})
	require.ErrorIs(t, err, services.ErrExhaustedRetries)
	assert.Equal(t, cfg.Retries+1, calls)
}

func TestInvoiceIDAssignStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("disk full")
	a := newAllocator(t, staticReader{})

	calls := 0
	_, err := a.Assign(context.Background(), func(context.Context, string) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestInvoiceIDAssignExhaustedSequence(t *testing.T) {
	a := newAllocator(t, staticReader{highest: "INV99999"})

	called := false
	_, err := a.Assign(context.Background(), func(context.Context, string) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, services.ErrExhaustedSequence)
	assert.False(t, called)
}
