package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
	"github.com/jhoicas/fieldstock-api/internal/domain"
)

func TestRetryPolicy_ReintentaSoloConflictos(t *testing.T) {
	p := inventory.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return domain.ErrConflict
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = p.Do(context.Background(), func() error {
		calls++
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, calls, "errores de negocio no se reintentan")

	calls = 0
	err = p.Do(context.Background(), func() error {
		calls++
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_RespetaCancelacion(t *testing.T) {
	p := inventory.RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		cancel()
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, calls)
}

func TestSaleCreate_ReintentaConflictos(t *testing.T) {
	var runner *conflictRunner
	f := newFixture(t, withRunner(func(next inventory.TxRunner) inventory.TxRunner {
		runner = &conflictRunner{next: next}
		return runner
	}))
	f.ship(t, "10", "2024-03-01")

	runner.calls, runner.failures = 0, 2
	_, err := f.sell("10", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
	assert.True(t, f.qty(t).Equal(dec("230")), "el descuento se aplica una sola vez")
}

func TestSaleCreate_ConflictoPersistente(t *testing.T) {
	var runner *conflictRunner
	f := newFixture(t,
		withRetry(inventory.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}),
		withRunner(func(next inventory.TxRunner) inventory.TxRunner {
			runner = &conflictRunner{next: next}
			return runner
		}),
	)
	f.ship(t, "10", "2024-03-01")

	runner.calls, runner.failures = 0, 5
	_, err := f.sell("10", "2024-03-02")
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 2, runner.calls)
	assert.True(t, f.qty(t).Equal(dec("240")))
}
