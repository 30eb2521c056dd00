package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/fieldstock-api/internal/domain"
)

// RetryPolicy reintenta operaciones que fallan con domain.ErrConflict (serialización/deadlock)
// con backoff exponencial: BaseDelay, 2*BaseDelay, 4*BaseDelay...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy 3 intentos, 20ms de espera base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond}
}

// Do ejecuta fn hasta que no devuelva ErrConflict, se agoten los intentos o se cancele ctx.
// Cualquier otro error se devuelve de inmediato.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= attempts {
			return err
		}
		timer := time.NewTimer(p.BaseDelay << (attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
